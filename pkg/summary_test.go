package lheutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	lheutils "github.com/next-exp/lheutils/pkg"
)

func TestSummarize_CountsChannelsPerProcess(t *testing.T) {
	src := lheutils.NewSliceStream(
		ttbarEvent(0.002), ttbarEvent(-0.001), ttbarEvent(0.003),
		zmumuEvent(0.004), zmumuEvent(0.005),
	)

	fi, err := lheutils.Summarize("run.lhe", sampleInit(), src)
	require.NoError(t, err)

	require.Equal(t, "run.lhe", fi.Name)
	require.Equal(t, 5, fi.Events)
	require.Equal(t, 1, fi.Negative)
	require.InDelta(t, 0.2, fi.NegativeRatio(), 1e-12)

	require.Len(t, fi.Processes, 2)

	top := fi.Processes[0]
	require.Equal(t, int64(1), top.ProcID)
	require.Equal(t, 425.42, top.XSection)
	require.Len(t, top.Channels, 1)
	require.Equal(t, []int64{21, 21}, top.Channels[0].Incoming)
	require.Equal(t, []int64{-6, 6}, top.Channels[0].Outgoing)
	require.Equal(t, 3, top.Channels[0].Events)
	require.Equal(t, 1, top.Channels[0].Negative)

	dy := fi.Processes[1]
	require.Equal(t, int64(2), dy.ProcID)
	require.Len(t, dy.Channels, 1)
	require.Equal(t, []int64{-2, 2}, dy.Channels[0].Incoming)
	require.Equal(t, []int64{-13, 13}, dy.Channels[0].Outgoing)
	require.Equal(t, 2, dy.Channels[0].Events)
	require.Equal(t, 0, dy.Channels[0].Negative)
}

func TestSummarize_ChannelIgnoresParticleOrder(t *testing.T) {
	flipped := ttbarEvent(0.002)
	flipped.Particles[2], flipped.Particles[3] = flipped.Particles[3], flipped.Particles[2]

	src := lheutils.NewSliceStream(ttbarEvent(0.001), flipped)
	fi, err := lheutils.Summarize("run.lhe", sampleInit(), src)
	require.NoError(t, err)

	require.Len(t, fi.Processes[0].Channels, 1)
	require.Equal(t, 2, fi.Processes[0].Channels[0].Events)
}

func TestSummary_AddMergesAcrossProcesses(t *testing.T) {
	// same particle content produced under two different process ids
	relabeled := ttbarEvent(-0.002)
	relabeled.EventInfo.ProcID = 2

	first, err := lheutils.Summarize("a.lhe", sampleInit(),
		lheutils.NewSliceStream(ttbarEvent(0.001), ttbarEvent(0.002)))
	require.NoError(t, err)

	second, err := lheutils.Summarize("b.lhe", sampleInit(),
		lheutils.NewSliceStream(relabeled, zmumuEvent(0.003)))
	require.NoError(t, err)

	total := first.Summary()
	total.Add(second.Summary())

	require.Equal(t, 4, total.Events)
	require.Equal(t, 1, total.Negative)

	// the ttbar channels of process 1 and process 2 collapse into one
	require.Len(t, total.Channels, 2)
	lheutils.SortChannelsByEvents(total.Channels)
	require.Equal(t, []int64{-6, 6}, total.Channels[0].Outgoing)
	require.Equal(t, 3, total.Channels[0].Events)
	require.Equal(t, 1, total.Channels[0].Negative)
	require.Equal(t, []int64{-13, 13}, total.Channels[1].Outgoing)
	require.Equal(t, 1, total.Channels[1].Events)
}

func TestSummarize_PropagatesStreamError(t *testing.T) {
	src := &errStream{events: nil, err: errBoom}

	_, err := lheutils.Summarize("bad.lhe", sampleInit(), src)
	require.ErrorIs(t, err, errBoom)
}
