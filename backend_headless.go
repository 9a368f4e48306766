package mixengine

import "sync"

// HeadlessBackend is a deterministic, in-process Backend used by the
// engine's own test suite to simulate the end-to-end scenarios in
// SPEC_FULL.md §8 without a sound card. Grounded on
// audio_backend_headless.go's trivial no-op player, generalized from a
// fixed single-symbol fake into a full Backend with scriptable frame
// delivery: callers call PushCapture to feed the input callback and
// Pump to drive the output callback synchronously, both from the
// calling goroutine, so tests never race against real audio threads.
type HeadlessBackend struct {
	mu       sync.Mutex
	inputs   []*headlessInputStream
	outputs  []*headlessOutputStream
	channels int
}

// NewHeadlessBackend returns a backend whose devices all report channels
// input/output channels.
func NewHeadlessBackend(channels int) *HeadlessBackend {
	if channels <= 0 {
		channels = 1
	}
	return &HeadlessBackend{channels: channels}
}

func (b *HeadlessBackend) OpenInput(deviceIndex int, sampleRate int, fmt SampleFormat, onFrames InputFrameFunc) (InputStream, error) {
	s := &headlessInputStream{channels: b.channels, onFrames: onFrames}
	b.mu.Lock()
	b.inputs = append(b.inputs, s)
	b.mu.Unlock()
	return s, nil
}

func (b *HeadlessBackend) OpenOutput(deviceIndex int, sampleRate int, fmt SampleFormat, onFrames OutputFrameFunc) (OutputStream, error) {
	s := &headlessOutputStream{channels: b.channels, onFrames: onFrames}
	b.mu.Lock()
	b.outputs = append(b.outputs, s)
	b.mu.Unlock()
	return s, nil
}

func (b *HeadlessBackend) Devices(kind DeviceKind) ([]DeviceInfo, error) {
	return []DeviceInfo{{Name: "headless", Index: 0}}, nil
}

func (b *HeadlessBackend) DefaultDeviceIndex(kind DeviceKind) (int, error) { return 0, nil }

func (b *HeadlessBackend) Close() error { return nil }

type headlessInputStream struct {
	channels int
	onFrames InputFrameFunc
	stopped  bool
}

func (s *headlessInputStream) ChannelCount() int { return s.channels }
func (s *headlessInputStream) Stop() error       { s.stopped = true; return nil }
func (s *headlessInputStream) Close() error      { return nil }

// PushCapture delivers frameCount frames of interleaved PCM to the stream's
// input callback, simulating the backend's capture thread.
func (s *headlessInputStream) PushCapture(interleaved []byte, frameCount int) {
	if s.stopped || s.onFrames == nil {
		return
	}
	s.onFrames(interleaved, frameCount, s.channels)
}

type headlessOutputStream struct {
	channels int
	onFrames OutputFrameFunc
	stopped  bool
}

func (s *headlessOutputStream) ChannelCount() int { return s.channels }
func (s *headlessOutputStream) Stop() error       { s.stopped = true; return nil }
func (s *headlessOutputStream) Close() error      { return nil }

// Pump asks the stream's output callback for frameCount frames and returns
// the buffer it produced, simulating the backend's playback thread.
func (s *headlessOutputStream) Pump(frameCount int, fmt SampleFormat) []byte {
	if s.stopped || s.onFrames == nil {
		return nil
	}
	buf := make([]byte, frameCount*s.channels*BytesPerSample(fmt))
	s.onFrames(buf, frameCount, s.channels)
	return buf
}
