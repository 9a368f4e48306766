package mixengine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBytesToSampleFullScale(t *testing.T) {
	cases := []struct {
		name string
		fmt  SampleFormat
		buf  []byte
		want float64
	}{
		{"S16 max", FormatS16, []byte{0xFF, 0x7F}, 1.0},
		{"S16 min", FormatS16, []byte{0x00, 0x80}, -1.0},
		{"S16 zero", FormatS16, []byte{0x00, 0x00}, 0.0},
		{"U8 max", FormatU8, []byte{0xFF}, 1.0},
		{"U8 min", FormatU8, []byte{0x00}, 0.0},
		{"S32 max", FormatS32, []byte{0xFF, 0xFF, 0xFF, 0x7F}, 1.0},
		{"U32 max", FormatU32, []byte{0xFF, 0xFF, 0xFF, 0xFF}, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := BytesToSample(c.buf, c.fmt)
			require.InDelta(t, c.want, got, 1e-6)
		})
	}
}

func TestSampleToBytesRoundTrip(t *testing.T) {
	formats := []SampleFormat{FormatU8, FormatS8, FormatU16, FormatS16, FormatU24, FormatS24, FormatU32, FormatS32, FormatFL32, FormatFL64}
	for _, f := range formats {
		desc, _ := lookupFormat(f)
		for _, s := range []float64{0.0, 1.0, -1.0, 0.5, -0.5} {
			buf := SampleToBytes(s, f)
			require.Len(t, buf, desc.bytesInWire)
			got := BytesToSample(buf, f)
			want := s
			if !desc.signed && s < 0 {
				// Unsigned formats span [0, 1]; a negative sample clips to 0.
				want = 0
			}
			require.InDeltaf(t, want, got, 1.0/desc.max+1e-9, "format %s sample %v", f, s)
		}
	}
}

func TestAddAndScaleIdentity(t *testing.T) {
	src := SampleToBytes(0.5, FormatS16)
	dst := make([]byte, len(src))
	AddAndScale(src, dst, 1.0, 1, FormatS16)
	require.InDelta(t, 0.5, BytesToSample(dst, FormatS16), 1e-4)
}

func TestAddAndScaleSaturates(t *testing.T) {
	a := SampleToBytes(0.9, FormatS16)
	b := SampleToBytes(0.9, FormatS16)
	dst := make([]byte, len(a))
	copy(dst, b)
	AddAndScale(a, dst, 1.0, 1, FormatS16)
	require.InDelta(t, 1.0, BytesToSample(dst, FormatS16), 1e-3)
}

func TestScaleIsPureMultiplyNotSelfAdd(t *testing.T) {
	buf := SampleToBytes(0.4, FormatS16)
	Scale(buf, 0.5, 1, FormatS16)
	require.InDelta(t, 0.2, BytesToSample(buf, FormatS16), 1e-3)
}

func TestRMSSilenceAndFullScale(t *testing.T) {
	silence := make([]byte, BytesPerSample(FormatS16)*4)
	require.Equal(t, 0.0, RMS(silence, len(silence), FormatS16))

	full := make([]byte, 0)
	for i := 0; i < 4; i++ {
		full = append(full, SampleToBytes(1.0, FormatS16)...)
	}
	require.InDelta(t, 1.0, RMS(full, len(full), FormatS16), 1e-4)
}

func TestUnsignedSaturationClipsBothBounds(t *testing.T) {
	desc, _ := lookupFormat(FormatU8)
	require.Equal(t, int64(0), saturateRaw(-50, desc))
	require.Equal(t, int64(255), saturateRaw(400, desc))
}

// Property: round-tripping any in-range float sample through SampleToBytes
// and BytesToSample never drifts by more than one quantization step
// (unsigned formats span [0, 1], so a negative sample comes back as 0).
func TestRapidRoundTrip(t *testing.T) {
	formats := []SampleFormat{FormatU8, FormatS16, FormatS24, FormatS32, FormatFL32, FormatFL64}
	rapid.Check(t, func(rt *rapid.T) {
		f := formats[rapid.IntRange(0, len(formats)-1).Draw(rt, "fmt")]
		s := rapid.Float64Range(-1.0, 1.0).Draw(rt, "sample")
		desc, _ := lookupFormat(f)

		buf := SampleToBytes(s, f)
		got := BytesToSample(buf, f)
		want := s
		if !desc.signed && s < 0 {
			want = 0
		}

		tolerance := 2.0 / desc.max
		if desc.float {
			tolerance = 1e-6
		}
		if math.Abs(got-want) > tolerance {
			rt.Fatalf("round trip drift: format=%s in=%v out=%v tolerance=%v", f, s, got, tolerance)
		}
	})
}

// Property: AddAndScale never produces a sample magnitude beyond what the
// format can represent, regardless of input or gain.
func TestRapidAddAndScaleNeverOverflows(t *testing.T) {
	formats := []SampleFormat{FormatU8, FormatS16, FormatS32}
	rapid.Check(t, func(rt *rapid.T) {
		f := formats[rapid.IntRange(0, len(formats)-1).Draw(rt, "fmt")]
		a := rapid.Float64Range(-1.0, 1.0).Draw(rt, "a")
		b := rapid.Float64Range(-1.0, 1.0).Draw(rt, "b")
		gain := rapid.Float64Range(0.0, 4.0).Draw(rt, "gain")

		src := SampleToBytes(a, f)
		dst := SampleToBytes(b, f)
		AddAndScale(src, dst, gain, 1, f)
		got := BytesToSample(dst, f)

		if got > 1.0+1e-9 || got < -1.0-1e-9 {
			rt.Fatalf("AddAndScale escaped [-1,1]: format=%s a=%v b=%v gain=%v got=%v", f, a, b, gain, got)
		}
	})
}
