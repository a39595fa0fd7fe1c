package lheutils

import (
	"fmt"

	"github.com/next-exp/lheutils/lhef"
)

// AddWeight registers a new weight id under the named group of an init
// block, creating the group when missing. The id must not exist in any
// group. The assigned index is one past the largest index already in use, so
// the new weight lands at the end of the compact <weights> order.
func AddWeight(init *lhef.Init, group, id, text string) (int, error) {
	index := 0
	for _, wg := range init.WeightGroups {
		for _, w := range wg.Weights {
			if w.ID == id {
				return 0, &ErrDuplicateWeight{ID: id, Group: wg.Name}
			}
			if w.Index > index {
				index = w.Index
			}
		}
	}
	index++
	entry := lhef.WeightInfo{ID: id, Text: text, Index: index}
	for i := range init.WeightGroups {
		if init.WeightGroups[i].Name == group {
			init.WeightGroups[i].Weights = append(init.WeightGroups[i].Weights, entry)
			return index, nil
		}
	}
	init.WeightGroups = append(init.WeightGroups, lhef.WeightGroup{
		Name:    group,
		Weights: []lhef.WeightInfo{entry},
	})
	logInfo(fmt.Sprintf("Created weight group %q for weight %q", group, id), "weights")
	return index, nil
}

// RestrictTo prunes the init weight table to the single given id. Groups
// left without weights are removed. The surviving weight keeps its index.
func RestrictTo(init *lhef.Init, id string) error {
	if _, ok := init.FindWeight(id); !ok {
		return &ErrWeightNotFound{ID: id}
	}
	kept := make([]lhef.WeightGroup, 0, len(init.WeightGroups))
	for _, wg := range init.WeightGroups {
		var weights []lhef.WeightInfo
		for _, w := range wg.Weights {
			if w.ID == id {
				weights = append(weights, w)
			}
		}
		if len(weights) > 0 {
			wg.Weights = weights
			kept = append(kept, wg)
		}
	}
	init.WeightGroups = kept
	return nil
}
