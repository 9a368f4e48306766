package mixengine

import (
	"math"
	"sync/atomic"
)

// TrackCallback is invoked by the mix pipeline at the input-ready and
// output-ready points in the pipeline (§4.4 steps 4 and 6), and for each
// registered per-track effect. buf[:validBytes] is the track's scratch
// buffer; an effect is free to rewrite buf[:validBytes] in place.
type TrackCallback func(trackID int, buf []byte, validBytes int, fmt SampleFormat, sampleRate int, numChannels int)

// trackRMS holds a track's current input and output RMS levels, read by
// the control API and written by the mix tick.
type trackRMS struct {
	input  atomic.Uint64 // float64 bits
	output atomic.Uint64 // float64 bits
}

func (r *trackRMS) setInput(v float64)  { r.input.Store(math.Float64bits(v)) }
func (r *trackRMS) setOutput(v float64) { r.output.Store(math.Float64bits(v)) }
func (r *trackRMS) getInput() float64   { return math.Float64frombits(r.input.Load()) }
func (r *trackRMS) getOutput() float64  { return math.Float64frombits(r.output.Load()) }

// Track is one logical mixer channel. Control-thread mutators use atomics
// for scalar fields and a copy-on-write published slice for the effect
// chain, so the mix tick never locks to read track state — grounded on
// the spec's explicit redesign note for effect registration (§9) and on
// haivivi-giztoy/go/pkg/audio/pcm/mixer.go's atomic per-track gain.
type Track struct {
	id int

	gain atomic.Uint64 // float64 bits, linear magnitude
	mute atomic.Bool
	solo atomic.Bool

	// InputDeviceIndex is preserved for API parity with the original core
	// but has no effect on the mix tick: with a single open input device,
	// only InputChannelIndex selects which ring buffer feeds a track.
	inputDeviceIndex  atomic.Int64
	inputChannelIndex atomic.Int64

	rms trackRMS

	scratch    []byte
	scratchLen int

	effects       atomic.Pointer[[]TrackCallback]
	inputReadyCb  atomic.Pointer[TrackCallback]
	outputReadyCb atomic.Pointer[TrackCallback]
}

func newTrack(id int, scratchCap int) *Track {
	t := &Track{id: id, scratch: make([]byte, scratchCap)}
	t.gain.Store(math.Float64bits(1.0))
	t.inputChannelIndex.Store(0)
	empty := []TrackCallback{}
	t.effects.Store(&empty)
	return t
}

// ID returns the track's identifier.
func (t *Track) ID() int { return t.id }

// Gain returns the track's current linear gain magnitude.
func (t *Track) Gain() float64 { return math.Float64frombits(t.gain.Load()) }

func (t *Track) setGain(g float64) { t.gain.Store(math.Float64bits(g)) }

// Muted reports whether the track is currently muted.
func (t *Track) Muted() bool { return t.mute.Load() }

// Solo reports whether the track is currently solo'd.
func (t *Track) Solo() bool { return t.solo.Load() }

// InputChannelIndex returns the hardware input channel currently routed
// to this track.
func (t *Track) InputChannelIndex() int { return int(t.inputChannelIndex.Load()) }

// InputDeviceIndex returns the informational-only input device index
// recorded for this track (spec §9: no runtime effect).
func (t *Track) InputDeviceIndex() int { return int(t.inputDeviceIndex.Load()) }

// InputRMS returns the track's most recently computed input-stage RMS.
func (t *Track) InputRMS() float64 { return t.rms.getInput() }

// OutputRMS returns the track's most recently computed output-stage RMS.
func (t *Track) OutputRMS() float64 { return t.rms.getOutput() }

// effectsSnapshot returns the currently published effect chain. Safe to
// call from the mix tick without locking.
func (t *Track) effectsSnapshot() []TrackCallback {
	return *t.effects.Load()
}

// addEffect appends cb to the track's effect chain, publishing a new
// slice atomically (copy-on-write). Returns ErrTooManyEffects once the
// chain is at capacity.
func (t *Track) addEffect(cb TrackCallback) error {
	cur := t.effectsSnapshot()
	if len(cur) >= MaxNumEffects {
		return ErrTooManyEffects
	}
	next := make([]TrackCallback, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = cb
	t.effects.Store(&next)
	return nil
}

func (t *Track) setInputReady(cb TrackCallback)  { t.inputReadyCb.Store(&cb) }
func (t *Track) setOutputReady(cb TrackCallback) { t.outputReadyCb.Store(&cb) }

func (t *Track) inputReady() TrackCallback {
	p := t.inputReadyCb.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (t *Track) outputReady() TrackCallback {
	p := t.outputReadyCb.Load()
	if p == nil {
		return nil
	}
	return *p
}
