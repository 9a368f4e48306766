package mixengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEngineRejectsBadSampleRate(t *testing.T) {
	_, err := NewEngine(22050, FormatS16, WithBackend(NewHeadlessBackend(1)))
	require.ErrorIs(t, err, ErrUnsupportedSampleRate)
}

func TestNewEngineRejectsBadFormat(t *testing.T) {
	_, err := NewEngine(48000, SampleFormat(99), WithBackend(NewHeadlessBackend(1)))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStartStreamTwiceFails(t *testing.T) {
	e, err := NewEngine(48000, FormatS16, WithBackend(NewHeadlessBackend(1)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.StartOutputStream(0, 20))
	err = e.StartOutputStream(0, 20)
	require.ErrorIs(t, err, ErrStreamAlreadyStarted)
}

func TestCloseIsIdempotent(t *testing.T) {
	e, err := NewEngine(48000, FormatS16, WithBackend(NewHeadlessBackend(1)))
	require.NoError(t, err)
	require.NoError(t, e.StartOutputStream(0, 20))
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
}

func TestDevicesAndDefaultDeviceIndex(t *testing.T) {
	e, err := NewEngine(48000, FormatS16, WithBackend(NewHeadlessBackend(2)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	devices, err := e.Devices(DeviceOutput)
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	idx, err := e.DefaultDeviceIndex(DeviceOutput)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}
