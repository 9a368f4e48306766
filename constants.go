package mixengine

// Constants carried unchanged from the distilled spec's §6.
const (
	DefaultBufferFrames = 64
	MaxBufferSizeBytes  = 8192
	MaxNumEffects       = 50
)
