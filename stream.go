package mixengine

import "fmt"

// StartInputStream opens a capture stream through the backend, passing
// deviceIndex on to Backend.OpenInput (none of the bundled backends selects
// a device by it; each opens its default capture device), adopts the
// stream's channel layout, and rebuilds the
// per-channel ring buffer array — one SPSC ring per hardware input
// channel, capacity DefaultBufferFrames*bytesPerSample, matching §4.5.
func (e *Engine) StartInputStream(deviceIndex int, latencyMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inputStream != nil {
		return fmt.Errorf("mixengine: start input stream: %w", ErrStreamAlreadyStarted)
	}

	stride := BytesPerSample(e.format)
	stream, err := e.backend.OpenInput(deviceIndex, e.sampleRate, e.format, func(interleaved []byte, frameCount int, numChannels int) {
		e.demuxCapture(interleaved, frameCount, numChannels, stride)
	})
	if err != nil {
		e.logger.Error("start input stream failed", "err", err)
		return fmt.Errorf("mixengine: start input stream: %w: %w", ErrInputStream, err)
	}

	channels := stream.ChannelCount()
	rings := make([]*channelRing, channels)
	bufs := make([][]byte, channels)
	captureBufs := make([][]byte, channels)
	capacityBytes := e.bufferFrames * stride
	for i := range rings {
		rings[i] = newChannelRing(capacityBytes)
		bufs[i] = make([]byte, MaxBufferSizeBytes)
		captureBufs[i] = make([]byte, MaxBufferSizeBytes)
	}

	e.inputStream = stream
	e.channelRings = rings
	e.channelBufs = bufs
	e.captureBufs = captureBufs
	e.numInputChannels = channels
	e.logger.Info("input stream started", "device", deviceIndex, "channels", channels)
	return nil
}

// demuxCapture is the input callback: it de-interleaves captured frames
// into the per-channel ring buffers. Producer side of the SPSC exchange
// (§4.2); never blocks and never allocates — it runs on the backend's
// real-time capture thread (see backend_malgo.go's Data callback), so it
// writes into e.captureBufs, preallocated once in StartInputStream,
// instead of calling make on every invocation.
func (e *Engine) demuxCapture(interleaved []byte, frameCount int, numChannels int, stride int) {
	if len(e.channelRings) == 0 {
		return
	}
	byteCount := frameCount * stride
	if byteCount > MaxBufferSizeBytes {
		byteCount = MaxBufferSizeBytes
		frameCount = byteCount / stride
	}
	n := numChannels
	if n > len(e.channelRings) {
		n = len(e.channelRings)
	}
	for c := 0; c < n; c++ {
		perChannel := e.captureBufs[c][:byteCount]
		for f := 0; f < frameCount; f++ {
			srcOff := (f*numChannels + c) * stride
			dstOff := f * stride
			copy(perChannel[dstOff:dstOff+stride], interleaved[srcOff:srcOff+stride])
		}
		e.channelRings[c].Write(perChannel)
	}
}

// StopInputStream tears down the capture stream. The per-channel ring
// buffers remain readable until drained; a subsequent output tick simply
// sees them empty.
func (e *Engine) StopInputStream() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inputStream == nil {
		return fmt.Errorf("mixengine: stop input stream: %w", ErrStreamNotStarted)
	}
	err := e.inputStream.Stop()
	_ = e.inputStream.Close()
	e.inputStream = nil
	e.logger.Info("input stream stopped")
	if err != nil {
		return fmt.Errorf("mixengine: stop input stream: %w", err)
	}
	return nil
}

// StartOutputStream opens the playback device and binds the mix pipeline
// (Engine.tick) as its write callback.
func (e *Engine) StartOutputStream(deviceIndex int, latencyMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outputStream != nil {
		return fmt.Errorf("mixengine: start output stream: %w", ErrStreamAlreadyStarted)
	}

	stream, err := e.backend.OpenOutput(deviceIndex, e.sampleRate, e.format, func(out []byte, frameCount int, numChannels int) {
		e.tick(out, frameCount, numChannels)
	})
	if err != nil {
		e.logger.Error("start output stream failed", "err", err)
		return fmt.Errorf("mixengine: start output stream: %w: %w", ErrOutputStream, err)
	}

	e.outputStream = stream
	e.logger.Info("output stream started", "device", deviceIndex, "channels", stream.ChannelCount())
	return nil
}

// StopOutputStream tears down the playback stream.
func (e *Engine) StopOutputStream() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outputStream == nil {
		return fmt.Errorf("mixengine: stop output stream: %w", ErrStreamNotStarted)
	}
	err := e.outputStream.Stop()
	_ = e.outputStream.Close()
	e.outputStream = nil
	e.logger.Info("output stream stopped")
	if err != nil {
		return fmt.Errorf("mixengine: stop output stream: %w", err)
	}
	return nil
}
