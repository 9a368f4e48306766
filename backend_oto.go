package mixengine

import (
	"fmt"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend is a playback-only fallback Backend built on
// github.com/ebitengine/oto/v3, kept from the teacher's own dependency
// list and backend shape (audio_backend_oto.go: an atomic.Pointer holding
// the thing the hot-path Read callback pulls samples from, so Close can
// swap it out without a lock on the audio thread). Oto has no capture
// API, so OpenInput always fails with ErrBackendCaptureUnsupported — a
// caller selecting this backend must not also call StartInputStream.
type OtoBackend struct {
	channels int
}

// NewOtoBackend returns a playback-only backend that opens output devices
// with the given channel count (stereo if channels <= 0).
func NewOtoBackend(channels int) *OtoBackend {
	if channels <= 0 {
		channels = 2
	}
	return &OtoBackend{channels: channels}
}

func (b *OtoBackend) OpenInput(deviceIndex int, sampleRate int, sf SampleFormat, onFrames InputFrameFunc) (InputStream, error) {
	return nil, ErrBackendCaptureUnsupported
}

func sampleFormatToOto(sf SampleFormat) (oto.Format, error) {
	switch sf {
	case FormatU8:
		return oto.FormatUnsignedInt8, nil
	case FormatS16:
		return oto.FormatSignedInt16LE, nil
	case FormatFL32:
		return oto.FormatFloat32LE, nil
	default:
		return 0, fmt.Errorf("mixengine: oto backend does not support format %s", sf)
	}
}

// otoSourceReader adapts an OutputFrameFunc to the io.Reader oto.Player
// pulls from. Grounded on audio_backend_oto.go's Read([]byte) method,
// which reads from an atomic.Pointer-held chip rather than locking.
type otoSourceReader struct {
	onFrames atomic.Pointer[OutputFrameFunc]
	stride   int
	channels int
}

func (r *otoSourceReader) Read(p []byte) (int, error) {
	fn := r.onFrames.Load()
	if fn == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	frameSize := r.stride * r.channels
	frameCount := len(p) / frameSize
	if frameCount == 0 {
		return 0, nil
	}
	n := frameCount * frameSize
	(*fn)(p[:n], frameCount, r.channels)
	return n, nil
}

func (b *OtoBackend) OpenOutput(deviceIndex int, sampleRate int, sf SampleFormat, onFrames OutputFrameFunc) (OutputStream, error) {
	of, err := sampleFormatToOto(sf)
	if err != nil {
		return nil, err
	}
	reader := &otoSourceReader{stride: BytesPerSample(sf), channels: b.channels}
	reader.onFrames.Store(&onFrames)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: b.channels,
		Format:       of,
	})
	if err != nil {
		return nil, fmt.Errorf("mixengine: oto new context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(reader)
	player.Play()

	return &otoOutputStream{player: player, reader: reader, channels: b.channels}, nil
}

func (b *OtoBackend) Devices(kind DeviceKind) ([]DeviceInfo, error) {
	if kind == DeviceInput {
		return nil, ErrBackendCaptureUnsupported
	}
	return []DeviceInfo{{Name: "default", Index: 0}}, nil
}

func (b *OtoBackend) DefaultDeviceIndex(kind DeviceKind) (int, error) {
	if kind == DeviceInput {
		return 0, ErrBackendCaptureUnsupported
	}
	return 0, nil
}

func (b *OtoBackend) Close() error { return nil }

type otoOutputStream struct {
	player   *oto.Player
	reader   *otoSourceReader
	channels int
}

func (s *otoOutputStream) ChannelCount() int { return s.channels }

func (s *otoOutputStream) Stop() error {
	s.player.Pause()
	return nil
}

func (s *otoOutputStream) Close() error {
	return s.player.Close()
}
