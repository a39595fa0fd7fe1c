package lheutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/next-exp/lheutils/lhef"
	lheutils "github.com/next-exp/lheutils/pkg"
)

func countEvents(t *testing.T, name string) int {
	t.Helper()
	r, err := lhef.Open(name)
	require.NoError(t, err)
	defer r.Close()
	n := 0
	for r.Next() {
		n++
	}
	require.NoError(t, r.Err())
	return n
}

func TestChunkName(t *testing.T) {
	require.Equal(t, "run_1.lhe", lheutils.ChunkName("run.lhe", 1))
	require.Equal(t, "run_2.lhe.gz", lheutils.ChunkName("run.lhe.gz", 2))
	require.Equal(t, "events_3", lheutils.ChunkName("events", 3))
}

func TestSplit_Remainder(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.lhe")
	src := lheutils.NewSliceStream(
		ttbarEvent(0.001), ttbarEvent(0.002), ttbarEvent(0.003),
		ttbarEvent(0.004), ttbarEvent(0.005),
	)

	report, err := lheutils.Split(sampleInit(), src, base, 2, lheutils.WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, 5, report.Events)
	require.Len(t, report.Files, 3)

	require.Equal(t, 2, countEvents(t, lheutils.ChunkName(base, 1)))
	require.Equal(t, 2, countEvents(t, lheutils.ChunkName(base, 2)))
	require.Equal(t, 1, countEvents(t, lheutils.ChunkName(base, 3)))
}

func TestSplit_ExactMultipleHasNoEmptyTail(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.lhe")
	src := lheutils.NewSliceStream(
		ttbarEvent(0.001), ttbarEvent(0.002),
		ttbarEvent(0.003), ttbarEvent(0.004),
	)

	report, err := lheutils.Split(sampleInit(), src, base, 2, lheutils.WriteOptions{})
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	_, err = os.Stat(lheutils.ChunkName(base, 3))
	require.True(t, os.IsNotExist(err))
}

func TestSplit_EmptySourceWritesOneChunk(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.lhe")

	report, err := lheutils.Split(sampleInit(), lheutils.NewSliceStream(), base, 10, lheutils.WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, report.Events)
	require.Len(t, report.Files, 1)
	require.Equal(t, 0, countEvents(t, lheutils.ChunkName(base, 1)))
}

func TestSplit_InvalidChunkSize(t *testing.T) {
	_, err := lheutils.Split(sampleInit(), lheutils.NewSliceStream(), "run.lhe", 0, lheutils.WriteOptions{})
	var size *lheutils.ErrInvalidChunkSize
	require.ErrorAs(t, err, &size)
}

func TestSplit_RepairStopsAtTruncation(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.lhe")
	src := &errStream{
		events: []*lhef.Event{ttbarEvent(0.001), ttbarEvent(0.002), ttbarEvent(0.003)},
		err:    lhef.ErrTruncated,
	}

	report, err := lheutils.Split(sampleInit(), src, base, 2, lheutils.WriteOptions{Repair: true})
	require.NoError(t, err)
	require.Equal(t, 3, report.Events)
	require.Len(t, report.Files, 2)
	require.Equal(t, 1, countEvents(t, lheutils.ChunkName(base, 2)))
}

func TestSplit_FailsWithoutRepair(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.lhe")
	src := &errStream{
		events: []*lhef.Event{ttbarEvent(0.001), ttbarEvent(0.002), ttbarEvent(0.003)},
		err:    lhef.ErrTruncated,
	}

	_, err := lheutils.Split(sampleInit(), src, base, 2, lheutils.WriteOptions{})
	require.ErrorIs(t, err, lhef.ErrTruncated)
}
