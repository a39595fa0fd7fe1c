package lheutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	lheutils "github.com/next-exp/lheutils/pkg"
)

func TestAddWeight_CreatesGroup(t *testing.T) {
	init := sampleInit()

	index, err := lheutils.AddWeight(init, "reweight", "rwgt_10", "set param_card mass 25 125.5")
	require.NoError(t, err)
	require.Equal(t, 4, index)

	require.Len(t, init.WeightGroups, 3)
	group := init.WeightGroups[2]
	require.Equal(t, "reweight", group.Name)
	require.Len(t, group.Weights, 1)
	require.Equal(t, "rwgt_10", group.Weights[0].ID)
	require.Equal(t, "set param_card mass 25 125.5", group.Weights[0].Text)
	require.Equal(t, 4, group.Weights[0].Index)
}

func TestAddWeight_AppendsToExistingGroup(t *testing.T) {
	init := sampleInit()

	index, err := lheutils.AddWeight(init, "scale_variation", "1003", "muR=0.5 muF=1.0")
	require.NoError(t, err)
	require.Equal(t, 4, index)

	require.Len(t, init.WeightGroups, 2)
	scale := init.WeightGroups[0]
	require.Len(t, scale.Weights, 3)
	require.Equal(t, "1003", scale.Weights[2].ID)

	// the new id serializes last in the compact weights order
	ids := init.WeightIDs()
	require.Equal(t, []string{"1001", "1002", "2001", "1003"}, ids)
}

func TestAddWeight_RejectsDuplicateID(t *testing.T) {
	init := sampleInit()

	_, err := lheutils.AddWeight(init, "another_group", "2001", "whatever")
	var dup *lheutils.ErrDuplicateWeight
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "2001", dup.ID)
	require.Equal(t, "PDF_variation", dup.Group)
	// the init is left untouched
	require.True(t, init.Equal(sampleInit()))
}

func TestRestrictTo_PrunesOtherWeights(t *testing.T) {
	init := sampleInit()

	require.NoError(t, lheutils.RestrictTo(init, "1002"))

	require.Len(t, init.WeightGroups, 1)
	require.Equal(t, "scale_variation", init.WeightGroups[0].Name)
	require.Len(t, init.WeightGroups[0].Weights, 1)
	require.Equal(t, "1002", init.WeightGroups[0].Weights[0].ID)
	// the survivor keeps its original index
	require.Equal(t, 2, init.WeightGroups[0].Weights[0].Index)
}

func TestRestrictTo_UnknownID(t *testing.T) {
	init := sampleInit()

	err := lheutils.RestrictTo(init, "9999")
	var notFound *lheutils.ErrWeightNotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "9999", notFound.ID)
	// the init is left untouched
	require.True(t, init.Equal(sampleInit()))
}
