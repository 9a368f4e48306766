package mixengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackRegistryInsertGetRemove(t *testing.T) {
	r := newTrackRegistry()
	tr := newTrack(1, 64)
	r.insert(1, tr)

	got, ok := r.get(1)
	require.True(t, ok)
	require.Same(t, tr, got)
	require.Equal(t, 1, r.count())

	require.True(t, r.remove(1))
	_, ok = r.get(1)
	require.False(t, ok)
	require.False(t, r.remove(1))
}

func TestTrackRegistrySnapshotIsIndependentCopy(t *testing.T) {
	r := newTrackRegistry()
	r.insert(1, newTrack(1, 64))
	r.insert(2, newTrack(2, 64))

	snap := r.snapshot()
	require.Len(t, snap, 2)

	r.insert(3, newTrack(3, 64))
	require.Len(t, snap, 2, "snapshot must not observe later mutations")
	require.Equal(t, 3, r.count())
}

func TestTrackRegistryRemoveAll(t *testing.T) {
	r := newTrackRegistry()
	r.insert(1, newTrack(1, 64))
	r.insert(2, newTrack(2, 64))
	r.removeAll()
	require.Equal(t, 0, r.count())
	require.Empty(t, r.snapshot())
}
