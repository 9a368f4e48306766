package mixengine

import (
	"fmt"
	"math"
)

// logToMag converts a logarithmic dB value to its linear magnitude,
// matching original_source/src/csl_util.c's log_to_mag: 10^(dB/20).
func logToMag(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// AddTrack creates a track with the given id, default gain 0 dB, routed
// to input channel 0, with no effects registered.
func (e *Engine) AddTrack(id int) error {
	t := newTrack(id, MaxBufferSizeBytes)
	e.registry.insert(id, t)
	e.logger.Info("track added", "id", id)
	return nil
}

// DeleteTrack removes the track with the given id.
func (e *Engine) DeleteTrack(id int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: delete track %d: %w", id, ErrTrackNotFound)
	}
	if t.Solo() {
		e.tracksSolod.Add(-1)
		e.soloEngaged.Store(e.tracksSolod.Load() > 0)
	}
	e.registry.remove(id)
	e.logger.Info("track deleted", "id", id)
	return nil
}

// DeleteAllTracks removes every track, resetting solo state.
func (e *Engine) DeleteAllTracks() {
	e.registry.removeAll()
	e.tracksSolod.Store(0)
	e.soloEngaged.Store(false)
	e.logger.Info("all tracks deleted")
}

// ChooseInputDevice records the informational-only input device index for
// a track. Per spec §9, this has no effect on the mix tick: there is a
// single open input device, and only ChooseInputChannel selects which
// ring buffer feeds a track.
func (e *Engine) ChooseInputDevice(id int, deviceIndex int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: choose input device for track %d: %w", id, ErrTrackNotFound)
	}
	t.inputDeviceIndex.Store(int64(deviceIndex))
	return nil
}

// ChooseInputChannel routes track id to read from hardware input channel
// channelIndex. An index at or beyond the current channel count is
// accepted; such a track simply receives silence until the device offers
// enough channels.
func (e *Engine) ChooseInputChannel(id int, channelIndex int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: choose input channel for track %d: %w", id, ErrTrackNotFound)
	}
	t.inputChannelIndex.Store(int64(channelIndex))
	return nil
}

// GetTrackInputRMS returns the track's most recent input-stage RMS, or 0
// if the track does not exist.
func (e *Engine) GetTrackInputRMS(id int) float64 {
	t, ok := e.registry.get(id)
	if !ok {
		return 0
	}
	return t.InputRMS()
}

// GetTrackOutputRMS returns the track's most recent output-stage RMS, or 0
// if the track does not exist.
func (e *Engine) GetTrackOutputRMS(id int) float64 {
	t, ok := e.registry.get(id)
	if !ok {
		return 0
	}
	return t.OutputRMS()
}

// SoloEnable marks track id solo'd, engaging solo mode engine-wide.
func (e *Engine) SoloEnable(id int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: solo enable track %d: %w", id, ErrTrackNotFound)
	}
	if !t.solo.Swap(true) {
		e.tracksSolod.Add(1)
		e.soloEngaged.Store(true)
	}
	return nil
}

// SoloDisable clears track id's solo flag, disengaging solo mode once no
// track remains solo'd.
func (e *Engine) SoloDisable(id int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: solo disable track %d: %w", id, ErrTrackNotFound)
	}
	if t.solo.Swap(false) {
		e.tracksSolod.Add(-1)
		e.soloEngaged.Store(e.tracksSolod.Load() > 0)
	}
	return nil
}

// MuteEnable mutes track id. Mute always wins over solo in the mix tick.
func (e *Engine) MuteEnable(id int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: mute enable track %d: %w", id, ErrTrackNotFound)
	}
	t.mute.Store(true)
	return nil
}

// MuteDisable unmutes track id.
func (e *Engine) MuteDisable(id int) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: mute disable track %d: %w", id, ErrTrackNotFound)
	}
	t.mute.Store(false)
	return nil
}

// SetTrackVolume sets track id's gain from a dB value, stored internally
// as a linear magnitude (10^(dB/20)).
func (e *Engine) SetTrackVolume(id int, db float64) error {
	t, ok := e.registry.get(id)
	if !ok {
		return fmt.Errorf("mixengine: set track volume for track %d: %w", id, ErrTrackNotFound)
	}
	t.setGain(logToMag(db))
	return nil
}

// SetMasterVolume sets the master gain from a dB value.
func (e *Engine) SetMasterVolume(db float64) {
	e.masterGain.Store(math.Float64bits(logToMag(db)))
}

// RegisterMasterEffect appends cb to the master effect chain.
func (e *Engine) RegisterMasterEffect(cb MasterCallback) error {
	cur := *e.masterEffects.Load()
	if len(cur) >= e.maxEffects {
		return fmt.Errorf("mixengine: register master effect: %w", ErrTooManyEffects)
	}
	next := make([]MasterCallback, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = cb
	e.masterEffects.Store(&next)
	return nil
}

// RegisterMasterOutputReadyCallback sets the callback invoked with the
// final pre-device master buffer each tick.
func (e *Engine) RegisterMasterOutputReadyCallback(cb MasterCallback) error {
	e.masterOutputReadyCb.Store(&cb)
	return nil
}

// RegisterEffect appends cb to track id's effect chain.
func (e *Engine) RegisterEffect(trackID int, cb TrackCallback) error {
	t, ok := e.registry.get(trackID)
	if !ok {
		return fmt.Errorf("mixengine: register effect for track %d: %w", trackID, ErrTrackNotFound)
	}
	if len(t.effectsSnapshot()) >= e.maxEffects {
		return fmt.Errorf("mixengine: register effect for track %d: %w", trackID, ErrTooManyEffects)
	}
	return t.addEffect(cb)
}

// RegisterInputReadyCallback sets the callback invoked after demux, before
// track effects run, for track id.
func (e *Engine) RegisterInputReadyCallback(trackID int, cb TrackCallback) error {
	t, ok := e.registry.get(trackID)
	if !ok {
		return fmt.Errorf("mixengine: register input ready callback for track %d: %w", trackID, ErrTrackNotFound)
	}
	t.setInputReady(cb)
	return nil
}

// RegisterOutputReadyCallback sets the callback invoked after track
// effects run, before the track is summed into the master bus, for track
// id.
func (e *Engine) RegisterOutputReadyCallback(trackID int, cb TrackCallback) error {
	t, ok := e.registry.get(trackID)
	if !ok {
		return fmt.Errorf("mixengine: register output ready callback for track %d: %w", trackID, ErrTrackNotFound)
	}
	t.setOutputReady(cb)
	return nil
}
