package mixengine

// SampleFormat names one of the PCM wire formats the engine understands.
// All integer formats are little-endian.
type SampleFormat int

const (
	FormatU8 SampleFormat = iota
	FormatS8
	FormatU16
	FormatS16
	FormatU24
	FormatS24
	FormatU32
	FormatS32
	FormatFL32
	FormatFL64
)

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "U8"
	case FormatS8:
		return "S8"
	case FormatU16:
		return "U16"
	case FormatS16:
		return "S16"
	case FormatU24:
		return "U24"
	case FormatS24:
		return "S24"
	case FormatU32:
		return "U32"
	case FormatS32:
		return "S32"
	case FormatFL32:
		return "FL32"
	case FormatFL64:
		return "FL64"
	default:
		return "unknown"
	}
}

// formatDescriptor is the immutable per-format record the codec consults.
// BytesInWire is the storage footprint of one sample as it travels through
// the ring buffers and scratch buffers (24-bit is padded to 4 bytes on
// wire, 3 bytes when packed to/from a file, matching
// original_source/inc/csl_types.h's CSL_BYTES_IN_BUFFER_* vs
// CSL_BYTES_IN_SAMPLE_* distinction).
type formatDescriptor struct {
	format      SampleFormat
	bitDepth    int
	bytesInWire int
	bytesPacked int
	signed      bool
	float       bool
	max         float64
	min         float64
}

var formatTable = map[SampleFormat]formatDescriptor{
	FormatU8:   {FormatU8, 8, 1, 1, false, false, 255, 0},
	FormatS8:   {FormatS8, 8, 1, 1, true, false, 127, -128},
	FormatU16:  {FormatU16, 16, 2, 2, false, false, 65535, 0},
	FormatS16:  {FormatS16, 16, 2, 2, true, false, 32767, -32768},
	FormatU24:  {FormatU24, 24, 4, 3, false, false, 16777215, 0},
	FormatS24:  {FormatS24, 24, 4, 3, true, false, 8388607, -8388608},
	FormatU32:  {FormatU32, 32, 4, 4, false, false, 4294967295, 0},
	FormatS32:  {FormatS32, 32, 4, 4, true, false, 2147483647, -2147483648},
	FormatFL32: {FormatFL32, 32, 4, 4, true, true, 1.0, -1.0},
	FormatFL64: {FormatFL64, 64, 8, 8, true, true, 1.0, -1.0},
}

// lookupFormat returns the descriptor for f. ok is false for an unknown
// enum value; callers must not propagate a zero-value descriptor as if
// it were valid (spec's "no undefined data on unmatched formats" rule).
func lookupFormat(f SampleFormat) (formatDescriptor, bool) {
	d, ok := formatTable[f]
	return d, ok
}

// BytesPerSample returns the wire footprint of one sample of fmt, or 0
// for an unrecognized format.
func BytesPerSample(fmt SampleFormat) int {
	d, ok := lookupFormat(fmt)
	if !ok {
		return 0
	}
	return d.bytesInWire
}
