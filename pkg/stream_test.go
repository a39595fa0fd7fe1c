package lheutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/next-exp/lheutils/lhef"
	lheutils "github.com/next-exp/lheutils/pkg"
)

func drain(t *testing.T, s lheutils.EventStream) []*lhef.Event {
	t.Helper()
	var events []*lhef.Event
	for s.Next() {
		events = append(events, s.Event())
	}
	require.NoError(t, s.Err())
	return events
}

func TestTransformStream_AppendWeight(t *testing.T) {
	src := lheutils.NewSliceStream(ttbarEvent(0.002), ttbarEvent(-0.0007))
	stream := lheutils.NewTransformStream(src, lheutils.AppendWeight("rwgt_10"))

	events := drain(t, stream)
	require.Len(t, events, 2)
	for _, ev := range events {
		v, ok := ev.Weight("rwgt_10")
		require.True(t, ok)
		require.Equal(t, ev.EventInfo.Weight, v)
		// appended after the existing weights
		require.Equal(t, "rwgt_10", ev.Weights[len(ev.Weights)-1].ID)
	}
}

func TestTransformStream_RestrictWeight(t *testing.T) {
	with := ttbarEvent(0.002)
	without := ttbarEvent(0.003)
	without.Weights = without.Weights[:2] // strip 2001

	src := lheutils.NewSliceStream(with, without)
	stream := lheutils.NewTransformStream(src, lheutils.RestrictWeight("2001"))

	events := drain(t, stream)
	require.Len(t, events, 1)
	ev := events[0]
	require.Equal(t, 0.004, ev.EventInfo.Weight)
	require.Equal(t, []lhef.Weight{{ID: "2001", Value: 0.004}}, ev.Weights)
}

func TestTransformStream_PropagatesError(t *testing.T) {
	failing := func(ev *lhef.Event) (bool, error) { return false, errBoom }

	stream := lheutils.NewTransformStream(
		lheutils.NewSliceStream(ttbarEvent(0.002)), failing)

	require.False(t, stream.Next())
	require.ErrorIs(t, stream.Err(), errBoom)
}

func TestTransformStream_ChainsInOrder(t *testing.T) {
	// restrict first, then copy the new central weight under a fresh id
	src := lheutils.NewSliceStream(ttbarEvent(0.002))
	stream := lheutils.NewTransformStream(src,
		lheutils.RestrictWeight("1002"),
		lheutils.AppendWeight("copy"),
	)

	events := drain(t, stream)
	require.Len(t, events, 1)
	v, ok := events[0].Weight("copy")
	require.True(t, ok)
	require.Equal(t, 0.001, v)
}

func TestCompileFilter_Selects(t *testing.T) {
	filter, err := lheutils.CompileFilter("proc_id == 1 && 6 in outgoing")
	require.NoError(t, err)

	stream := lheutils.NewTransformStream(
		lheutils.NewSliceStream(ttbarEvent(0.002), zmumuEvent(0.004)), filter)

	events := drain(t, stream)
	require.Len(t, events, 1)
	require.Equal(t, int64(1), events[0].EventInfo.ProcID)
}

func TestCompileFilter_SeesWeightsAndCounts(t *testing.T) {
	filter, err := lheutils.CompileFilter(`n_incoming == 2 && weights["2001"] > 0.005`)
	require.NoError(t, err)

	stream := lheutils.NewTransformStream(
		lheutils.NewSliceStream(ttbarEvent(0.002), zmumuEvent(0.004)), filter)

	events := drain(t, stream)
	require.Len(t, events, 1)
	require.Equal(t, int64(2), events[0].EventInfo.ProcID)
}

func TestLimit(t *testing.T) {
	src := lheutils.NewSliceStream(ttbarEvent(0.001), ttbarEvent(0.002), ttbarEvent(0.003))

	events := drain(t, lheutils.Limit(src, 2))
	require.Len(t, events, 2)

	// non-positive limits pass the stream through untouched
	rest := lheutils.Limit(src, 0)
	require.True(t, rest.Next())
	require.Equal(t, 0.003, rest.Event().EventInfo.Weight)
}

func TestCompileFilter_RejectsBadExpression(t *testing.T) {
	_, err := lheutils.CompileFilter("no_such_variable > 1")
	require.Error(t, err)

	// non-boolean expressions are rejected at compile time
	_, err = lheutils.CompileFilter("weight * 2")
	require.Error(t, err)
}
