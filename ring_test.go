package mixengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelRingWriteRead(t *testing.T) {
	r := newChannelRing(8)
	require.Equal(t, 8, r.FreeCount())
	require.Equal(t, 0, r.FillCount())

	n := r.Write([]byte{1, 2, 3, 4})
	require.Equal(t, 4, n)
	require.Equal(t, 4, r.FillCount())
	require.Equal(t, 4, r.FreeCount())

	out := make([]byte, 4)
	n = r.Read(out)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{1, 2, 3, 4}, out)
	require.Equal(t, 0, r.FillCount())
	require.Equal(t, 8, r.FreeCount())
}

func TestChannelRingReadReturnsWhateverIsPresent(t *testing.T) {
	r := newChannelRing(8)
	r.Write([]byte{9, 9})

	out := make([]byte, 6)
	n := r.Read(out)
	require.Equal(t, 2, n)
	require.Equal(t, []byte{9, 9}, out[:n])
}

func TestChannelRingWriteDropsOverflow(t *testing.T) {
	r := newChannelRing(4)
	n := r.Write([]byte{1, 2, 3, 4, 5, 6})
	require.Equal(t, 4, n)
	require.Equal(t, 4, r.FillCount())
	require.Equal(t, 0, r.FreeCount())
}

func TestChannelRingWrapsAround(t *testing.T) {
	r := newChannelRing(4)
	r.Write([]byte{1, 2, 3})
	out := make([]byte, 3)
	r.Read(out)
	require.Equal(t, []byte{1, 2, 3}, out)

	n := r.Write([]byte{4, 5, 6})
	require.Equal(t, 3, n)
	n = r.Read(out)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{4, 5, 6}, out)
}

func TestChannelRingReset(t *testing.T) {
	r := newChannelRing(8)
	r.Write([]byte{1, 2, 3})
	r.Reset()
	require.Equal(t, 0, r.FillCount())
	require.Equal(t, 8, r.FreeCount())
}
