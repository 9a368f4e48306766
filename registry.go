package mixengine

import "sync"

// trackRegistry is a plain integer-keyed map guarded by a RWMutex. The
// original C core keys a string-hash table by the decimal id, which the
// spec itself flags as incidental (§9); this is the direct reimplementation.
//
// Grounded on audio_chip.go's RLock-snapshot-then-process pattern: the mix
// tick calls snapshot() to copy out the slice of tracks it will walk this
// tick, releasing the lock before running any track's (potentially slow)
// user callbacks, so AddTrack/DeleteTrack from the control thread never
// blocks behind a user effect.
type trackRegistry struct {
	mu     sync.RWMutex
	tracks map[int]*Track
}

func newTrackRegistry() *trackRegistry {
	return &trackRegistry{tracks: make(map[int]*Track)}
}

func (r *trackRegistry) insert(id int, t *Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks[id] = t
}

func (r *trackRegistry) get(id int) (*Track, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tracks[id]
	return t, ok
}

func (r *trackRegistry) remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tracks[id]; !ok {
		return false
	}
	delete(r.tracks, id)
	return true
}

func (r *trackRegistry) removeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks = make(map[int]*Track)
}

// snapshot copies the current set of tracks into a slice for the mix tick
// to iterate without holding the registry lock.
func (r *trackRegistry) snapshot() []*Track {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		out = append(out, t)
	}
	return out
}

func (r *trackRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}
