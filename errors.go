package mixengine

import "errors"

// Stable error sentinels. The original C core returned stable integer
// codes (>= 16) for these; callers here use errors.Is against these
// values instead.
var (
	ErrDevicesNotInitialized     = errors.New("mixengine: devices not initialized")
	ErrEnvironmentNotInitialized = errors.New("mixengine: environment not initialized")
	ErrIndexOutOfBounds          = errors.New("mixengine: index out of bounds")
	ErrDevicesNotLoaded          = errors.New("mixengine: devices not loaded")
	ErrInputMemoryNotAllocated   = errors.New("mixengine: input memory not allocated")
	ErrOutputMemoryNotAllocated  = errors.New("mixengine: output memory not allocated")
	ErrTrackNotFound             = errors.New("mixengine: track not found")
	ErrOpeningFile               = errors.New("mixengine: error opening file")
	ErrFileNotFound              = errors.New("mixengine: file not found")
	ErrInputStream               = errors.New("mixengine: input stream error")
	ErrOutputStream              = errors.New("mixengine: output stream error")
	ErrLoadingInputDevices       = errors.New("mixengine: error loading input devices")
	ErrLoadingOutputDevices      = errors.New("mixengine: error loading output devices")
	ErrSettingSampleRate         = errors.New("mixengine: error setting sample rate")
	ErrTooManyEffects            = errors.New("mixengine: too many effects registered")
	ErrBackendCaptureUnsupported = errors.New("mixengine: backend does not support capture")
	ErrUnsupportedSampleRate     = errors.New("mixengine: unsupported sample rate")
	ErrUnsupportedFormat         = errors.New("mixengine: unsupported sample format")
	ErrStreamAlreadyStarted      = errors.New("mixengine: stream already started")
	ErrStreamNotStarted          = errors.New("mixengine: stream not started")
)
