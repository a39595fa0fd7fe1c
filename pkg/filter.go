package lheutils

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/next-exp/lheutils/lhef"
)

// CompileFilter builds a Transform from a boolean selection expression.
// Expressions see these variables:
//
//	n_particles, proc_id          int
//	weight, scale                 float64
//	alpha_qed, alpha_qcd          float64
//	incoming, outgoing            []int (PDG ids by status)
//	n_incoming, n_outgoing        int
//	weights                       map[string]float64 (alternate weights by id)
//
// Example: "proc_id == 1 && n_outgoing >= 2 && 6 in outgoing".
func CompileFilter(src string) (Transform, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(&lhef.Event{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile selection %q: %w", src, err)
	}
	return func(ev *lhef.Event) (bool, error) {
		output, err := expr.Run(program, filterEnv(ev))
		if err != nil {
			return false, fmt.Errorf("failed to evaluate selection %q: %w", src, err)
		}
		keep, ok := output.(bool)
		if !ok {
			return false, fmt.Errorf("selection %q did not produce a boolean", src)
		}
		return keep, nil
	}, nil
}

func filterEnv(ev *lhef.Event) map[string]interface{} {
	incoming := make([]int, 0, 2)
	outgoing := make([]int, 0, len(ev.Particles))
	for _, p := range ev.Particles {
		switch p.Status {
		case -1:
			incoming = append(incoming, int(p.ID))
		case 1:
			outgoing = append(outgoing, int(p.ID))
		}
	}
	weights := make(map[string]float64, len(ev.Weights))
	for _, w := range ev.Weights {
		weights[w.ID] = w.Value
	}
	return map[string]interface{}{
		"n_particles": len(ev.Particles),
		"proc_id":     int(ev.EventInfo.ProcID),
		"weight":      ev.EventInfo.Weight,
		"scale":       ev.EventInfo.Scale,
		"alpha_qed":   ev.EventInfo.AlphaQED,
		"alpha_qcd":   ev.EventInfo.AlphaQCD,
		"incoming":    incoming,
		"outgoing":    outgoing,
		"n_incoming":  len(incoming),
		"n_outgoing":  len(outgoing),
		"weights":     weights,
	}
}
