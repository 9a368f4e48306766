package mixengine

import (
	"encoding/binary"
	"math"
)

// Package-internal PCM codec: conversion between little-endian wire bytes
// and a normalized float, plus the fused add-and-saturate mixing primitive
// the mix pipeline runs on every tick.
//
// Grounded on original_source/src/csl_util.c's bytes_to_sample and
// add_and_scale_audio: samples are decoded into a wide integer accumulator
// (sign-extended to 64 bits for signed formats), and only the
// final saturation bounds differ between signed and unsigned formats.

// decodeRaw reads one sample's wire bytes (desc.bytesPacked of them,
// little-endian) into an accumulator. int64 rather than int32 so an
// unsigned 32-bit sample's full range (up to 4294967295) survives the
// read without wrapping negative; sign-extension is applied for every
// signed format (8, 16, 24 and 32 bits), matching bytes_to_sample's
// shift-extend.
func decodeRaw(b []byte, desc formatDescriptor) int64 {
	var v int64
	for j := 0; j < desc.bytesPacked; j++ {
		v |= int64(b[j]) << uint(j*8)
	}
	if desc.signed {
		switch desc.bitDepth {
		case 32:
			v = (v << 32) >> 32
		case 24:
			v = (v << 40) >> 40
		case 16:
			v = (v << 48) >> 48
		case 8:
			v = (v << 56) >> 56
		}
	}
	return v
}

// encodeRaw writes v's low desc.bytesPacked bytes, little-endian, into b,
// zeroing the pad byte for 24-bit-on-wire formats.
func encodeRaw(v int64, b []byte, desc formatDescriptor) {
	for j := 0; j < desc.bytesPacked; j++ {
		b[j] = byte(v >> uint(j*8))
	}
	if desc.bitDepth == 24 {
		b[3] = 0
	}
}

// BytesToSample decodes one sample from buf (fmt.bytesInWire bytes, LE)
// into a normalized float in [-1.0, +1.0]. Returns 0.0 for an unrecognized
// format rather than propagating undefined data.
func BytesToSample(buf []byte, fmt SampleFormat) float64 {
	desc, ok := lookupFormat(fmt)
	if !ok || len(buf) < desc.bytesInWire {
		return 0
	}
	if desc.float {
		return decodeFloatRaw(buf, desc)
	}
	raw := decodeRaw(buf, desc)
	v := float64(raw)
	if v > 0 || !desc.signed {
		return v / desc.max
	}
	return v / -desc.min
}

// SampleToBytes encodes a normalized float sample in [-1.0, +1.0] into
// fmt's wire representation, returning a freshly allocated bytesInWire-
// length slice. Returns nil for an unrecognized format.
func SampleToBytes(sample float64, fmt SampleFormat) []byte {
	desc, ok := lookupFormat(fmt)
	if !ok {
		return nil
	}
	out := make([]byte, desc.bytesInWire)
	if desc.float {
		encodeFloatRaw(sample, out, desc)
		return out
	}
	var raw float64
	if sample > 0 || !desc.signed {
		raw = sample * desc.max
	} else {
		raw = sample * -desc.min
	}
	encodeRaw(saturateRaw(raw, desc), out, desc)
	return out
}

// saturateRaw clips v to the format's representable integer range. Unsigned
// formats clip to [0, max]; signed formats clip to [min, max]. The original
// C add_and_scale_audio only clips the upper bound for unsigned formats
// (letting a negative result wrap on cast to uint8_t); that is a defect in
// the source, not a documented behavior, and is not replicated here.
func saturateRaw(v float64, desc formatDescriptor) int64 {
	lo := desc.min
	if !desc.signed {
		lo = 0
	}
	if v > desc.max {
		return int64(desc.max)
	}
	if v < lo {
		return int64(lo)
	}
	return int64(v)
}

// AddAndScale decodes nSamples samples from src and dst, computes
// (src+dst)*gain, saturates to fmt's representable range, and re-encodes
// into dst. Pure aside from mutating dst; used for demuxing a channel into
// a track's scratch buffer and for summing a track into the master bus.
// In-place scaling is done by Scale, not by calling this with src==dst.
func AddAndScale(src, dst []byte, gain float64, nSamples int, fmt SampleFormat) {
	desc, ok := lookupFormat(fmt)
	if !ok {
		return
	}
	stride := desc.bytesInWire
	for i := 0; i < nSamples; i++ {
		off := i * stride
		if desc.float {
			s := decodeFloatRaw(src[off:off+stride], desc)
			d := decodeFloatRaw(dst[off:off+stride], desc)
			encodeFloatRaw((s+d)*gain, dst[off:off+stride], desc)
			continue
		}
		s := decodeRaw(src[off:off+stride], desc)
		d := decodeRaw(dst[off:off+stride], desc)
		result := (float64(s) + float64(d)) * gain
		encodeRaw(saturateRaw(result, desc), dst[off:off+stride], desc)
	}
}

// Scale multiplies nSamples samples of buf by gain in place, without an
// add. This is the pure scalar-gain primitive the codec contract promises;
// it is deliberately not implemented as a self-referential AddAndScale
// (which would double the signal before scaling) even though that is what
// original_source/src/streams.c's _processMasterOutputVolume literally
// does — see DESIGN.md.
func Scale(buf []byte, gain float64, nSamples int, fmt SampleFormat) {
	desc, ok := lookupFormat(fmt)
	if !ok {
		return
	}
	stride := desc.bytesInWire
	for i := 0; i < nSamples; i++ {
		off := i * stride
		if desc.float {
			v := decodeFloatRaw(buf[off:off+stride], desc)
			encodeFloatRaw(v*gain, buf[off:off+stride], desc)
			continue
		}
		v := decodeRaw(buf[off:off+stride], desc)
		encodeRaw(saturateRaw(float64(v)*gain, desc), buf[off:off+stride], desc)
	}
}

// RMS computes the root-mean-square of the normalized samples in
// buf[:nBytes], in [0, 1]. Callers must ensure nBytes is a multiple of
// fmt's bytesInWire and at least one sample's worth.
func RMS(buf []byte, nBytes int, fmt SampleFormat) float64 {
	desc, ok := lookupFormat(fmt)
	if !ok || nBytes < desc.bytesInWire {
		return 0
	}
	stride := desc.bytesInWire
	n := nBytes / stride
	var sumSq float64
	for i := 0; i < n; i++ {
		off := i * stride
		s := BytesToSample(buf[off:off+stride], fmt)
		sumSq += s * s
	}
	return math.Sqrt(sumSq / float64(n))
}

// decodeFloatRaw and encodeFloatRaw handle the FL32/FL64 formats, which
// carry an already-normalized IEEE-754 value rather than a fixed-point
// integer.
func decodeFloatRaw(buf []byte, desc formatDescriptor) float64 {
	if desc.bitDepth == 32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}

func encodeFloatRaw(sample float64, out []byte, desc formatDescriptor) {
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	if desc.bitDepth == 32 {
		binary.LittleEndian.PutUint32(out, math.Float32bits(float32(sample)))
		return
	}
	binary.LittleEndian.PutUint64(out, math.Float64bits(sample))
}
