package mixengine

import "math"

// tick is the mix pipeline (C4): it runs entirely inside the output
// callback, once per requested frame block. Grounded step-for-step on
// original_source/src/streams.c's _outputStreamWriteCallback and its
// _process* helpers. out must hold frameCount*numChannels*bytesPerSample
// bytes; tick fills all of it (silence where there is nothing to emit).
//
// No wait-flag handshake (spec §9): the ring buffers themselves provide
// backpressure. A channel ring with nothing buffered simply contributes
// zero samples this tick instead of blocking the output callback.
func (e *Engine) tick(out []byte, frameCount int, numChannels int) {
	stride := BytesPerSample(e.format)
	if stride == 0 {
		return
	}

	// Step 1 (snapshot replaces the original wait-for-input spin).
	tracks := e.registry.snapshot()

	// Step 2: clear staging.
	for i := range e.masterBuf {
		e.masterBuf[i] = 0
	}
	e.masterLen = 0
	for _, t := range tracks {
		for i := range t.scratch {
			t.scratch[i] = 0
		}
		t.scratchLen = 0
	}

	numInputChannels := len(e.channelRings)

	// Step 3: demux inputs.
	maxFillSamples := 0
	for c, ring := range e.channelRings {
		fill := ring.FillCount()
		if fill > MaxBufferSizeBytes {
			fill = MaxBufferSizeBytes
		}
		buf := e.channelBufs[c]
		n := ring.Read(buf[:fill])
		samples := n / stride
		if samples > maxFillSamples {
			maxFillSamples = samples
		}
		var inputRMS float64
		if n >= stride {
			inputRMS = RMS(buf[:n], n, e.format)
		}
		for _, t := range tracks {
			if t.InputChannelIndex() != c {
				continue
			}
			t.rms.setInput(inputRMS)
			AddAndScale(buf[:n], t.scratch, 1.0, samples, e.format)
			t.scratchLen = n
		}
	}

	// Step 4: input-ready callback.
	for _, t := range tracks {
		if cb := t.inputReady(); cb != nil {
			cb(t.id, t.scratch, t.scratchLen, e.format, e.sampleRate, numInputChannels)
		}
	}

	// Step 5: track effects, in registration order.
	for _, t := range tracks {
		for _, fx := range t.effectsSnapshot() {
			fx(t.id, t.scratch, t.scratchLen, e.format, e.sampleRate, numInputChannels)
		}
	}

	// Step 6: output-ready callback.
	for _, t := range tracks {
		if cb := t.outputReady(); cb != nil {
			cb(t.id, t.scratch, t.scratchLen, e.format, e.sampleRate, numInputChannels)
		}
	}

	// Step 7: sum into master, gated by mute/solo. Mute always wins.
	soloEngaged := e.soloEngaged.Load()
	for _, t := range tracks {
		if t.Muted() {
			continue
		}
		if soloEngaged && !t.Solo() {
			continue
		}
		samples := t.scratchLen / stride
		if samples == 0 {
			continue
		}
		AddAndScale(t.scratch, e.masterBuf, t.Gain(), samples, e.format)
		if t.scratchLen > e.masterLen {
			e.masterLen = t.scratchLen
		}
		t.rms.setOutput(RMS(t.scratch, t.scratchLen, e.format) * t.Gain())
	}

	// Step 8: master effects.
	for _, fx := range *e.masterEffects.Load() {
		fx(e.masterBuf, e.masterLen, e.format, e.sampleRate, numInputChannels)
	}

	// Step 9: master gain (pure scale, not a self-referential add — see
	// codec.go's Scale doc comment and DESIGN.md).
	masterGain := math.Float64frombits(e.masterGain.Load())
	Scale(e.masterBuf, masterGain, e.masterLen/stride, e.format)

	// Step 10: master output callback, observing the final pre-device buffer.
	if p := e.masterOutputReadyCb.Load(); p != nil {
		(*p)(e.masterBuf, e.masterLen, e.format, e.sampleRate, numInputChannels)
	}

	// Step 11: RMS computed over the full padded tick buffer, matching
	// original_source/src/streams.c exactly (frame_count_max *
	// bytes_per_frame of the OUTPUT stream, not the mono master buffer's
	// valid length) — see Engine.RMSCountsPadding.
	paddedLen := frameCount * numChannels * stride
	if paddedLen > MaxBufferSizeBytes {
		paddedLen = MaxBufferSizeBytes
	}
	if paddedLen >= stride {
		e.currentRMS.Store(math.Float64bits(RMS(e.masterBuf, paddedLen, e.format)))
	} else {
		e.currentRMS.Store(math.Float64bits(0))
	}
	e.currentOutputRMS.Store(e.currentRMS.Load())

	// Step 12: emit, replicating the mono mix across every output channel.
	readCountSamples := maxFillSamples
	if frameCount < readCountSamples {
		readCountSamples = frameCount
	}
	for f := 0; f < frameCount; f++ {
		haveSample := f < readCountSamples
		for ch := 0; ch < numChannels; ch++ {
			dstOff := (f*numChannels + ch) * stride
			dst := out[dstOff : dstOff+stride]
			if haveSample {
				srcOff := f * stride
				copy(dst, e.masterBuf[srcOff:srcOff+stride])
			} else {
				for k := range dst {
					dst[k] = 0
				}
			}
		}
	}
}
