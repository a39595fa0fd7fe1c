package lheutils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/next-exp/lheutils/lhef"
	lheutils "github.com/next-exp/lheutils/pkg"
)

func TestWriteFile_RoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe")
	events := []*lhef.Event{ttbarEvent(0.002), zmumuEvent(0.004)}

	res, err := lheutils.WriteFile(name, sampleInit(), lheutils.NewSliceStream(events...), lheutils.WriteOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Events)
	require.Equal(t, name, res.Filename)
	require.False(t, res.Truncated)

	r, err := lhef.Open(name)
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Init().Equal(sampleInit()))

	var got []*lhef.Event
	for r.Next() {
		got = append(got, r.Event())
	}
	require.NoError(t, r.Err())
	require.Equal(t, events, got)
}

func TestWriteFile_GzSuffixCompresses(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe.gz")

	_, err := lheutils.WriteFile(name, sampleInit(), lheutils.NewSliceStream(ttbarEvent(0.002)), lheutils.WriteOptions{})
	require.NoError(t, err)

	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte{0x1f, 0x8b}))

	// the reader auto-detects the compression
	require.Equal(t, 1, countEvents(t, name))
}

func TestWriteFile_NewFileMode(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe")

	_, err := lheutils.WriteFile(name, sampleInit(), lheutils.NewSliceStream(), lheutils.WriteOptions{})
	require.NoError(t, err)

	st, err := os.Stat(name)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), st.Mode().Perm())
}

func TestWriteFile_KeepsModeOfReplacedFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe")
	writeSample(t, name, sampleInit(), ttbarEvent(0.002))
	require.NoError(t, os.Chmod(name, 0o604))

	_, err := lheutils.WriteFile(name, sampleInit(), lheutils.NewSliceStream(zmumuEvent(0.004)), lheutils.WriteOptions{})
	require.NoError(t, err)

	st, err := os.Stat(name)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o604), st.Mode().Perm())
}

func TestWriteFile_ExplicitMode(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe")

	_, err := lheutils.WriteFile(name, sampleInit(), lheutils.NewSliceStream(), lheutils.WriteOptions{FileMode: 0o640})
	require.NoError(t, err)

	st, err := os.Stat(name)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o640), st.Mode().Perm())
}

func TestWriteFile_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.lhe")
	src := &errStream{events: []*lhef.Event{ttbarEvent(0.002)}, err: lhef.ErrTruncated}

	_, err := lheutils.WriteFile(name, sampleInit(), src, lheutils.WriteOptions{})
	require.ErrorIs(t, err, lhef.ErrTruncated)

	_, err = os.Stat(name)
	require.True(t, os.IsNotExist(err))

	// the temporary file is cleaned up as well
	leftovers, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestWrite_RepairClosesCleanly(t *testing.T) {
	src := &errStream{
		events: []*lhef.Event{ttbarEvent(0.002), ttbarEvent(0.003)},
		err:    lhef.ErrTruncated,
	}

	var buf bytes.Buffer
	res, err := lheutils.Write(&buf, sampleInit(), src, lheutils.WriteOptions{Repair: true})
	require.NoError(t, err)
	require.True(t, res.Truncated)
	require.ErrorIs(t, res.Cause, lhef.ErrTruncated)
	require.Equal(t, 2, res.Events)

	// the repaired output decodes end to end
	r, err := lhef.NewReader(&buf)
	require.NoError(t, err)
	n := 0
	for r.Next() {
		n++
	}
	require.NoError(t, r.Err())
	require.Equal(t, 2, n)
}

func TestWriteOutput_RefusesCompressedStdout(t *testing.T) {
	_, err := lheutils.WriteOutput("", sampleInit(), lheutils.NewSliceStream(), lheutils.WriteOptions{Compress: true})
	var opts *lheutils.ErrIncompatibleOptions
	require.ErrorAs(t, err, &opts)
}

func TestWriteOutput_WeightModes(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.lhe")
	mode, err := lhef.ParseWeightMode("none")
	require.NoError(t, err)

	_, err = lheutils.WriteOutput(name, sampleInit(), lheutils.NewSliceStream(ttbarEvent(0.002)), lheutils.WriteOptions{Mode: mode})
	require.NoError(t, err)

	r, err := lhef.Open(name)
	require.NoError(t, err)
	defer r.Close()
	require.True(t, r.Next())
	require.Empty(t, r.Event().Weights)
	require.False(t, r.Next())
	require.NoError(t, r.Err())
}
