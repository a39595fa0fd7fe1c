package lheutils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/next-exp/lheutils/lhef"
	lheutils "github.com/next-exp/lheutils/pkg"
)

var errBoom = errors.New("boom")

func sampleInit() *lhef.Init {
	return &lhef.Init{
		Version: "3.0",
		InitInfo: lhef.InitInfo{
			BeamA:             2212,
			BeamB:             2212,
			EnergyA:           6500,
			EnergyB:           6500,
			PDFSetA:           247000,
			PDFSetB:           247000,
			WeightingStrategy: -4,
			NumProcesses:      2,
		},
		ProcInfo: []lhef.ProcInfo{
			{XSection: 425.42, XError: 1.41, XMax: 0.92, ProcID: 1},
			{XSection: 12.7, XError: 0.33, XMax: 0.11, ProcID: 2},
		},
		WeightGroups: []lhef.WeightGroup{
			{
				Name:    "scale_variation",
				Combine: "envelope",
				Weights: []lhef.WeightInfo{
					{ID: "1001", Text: "muR=1.0 muF=1.0", Index: 1},
					{ID: "1002", Text: "muR=2.0 muF=1.0", Index: 2},
				},
			},
			{
				Name: "PDF_variation",
				Weights: []lhef.WeightInfo{
					{ID: "2001", Text: "pdfset=247001", Index: 3},
				},
			},
		},
	}
}

// gg -> t tbar under process 1
func ttbarEvent(weight float64) *lhef.Event {
	return &lhef.Event{
		EventInfo: lhef.EventInfo{
			NParticles: 4,
			ProcID:     1,
			Weight:     weight,
			Scale:      172.5,
			AlphaQED:   0.0075562731,
			AlphaQCD:   0.1180,
		},
		Particles: []lhef.Particle{
			{ID: 21, Status: -1, Color1: 503, Color2: 501, Pz: 649.82, E: 649.82, Spin: -1},
			{ID: 21, Status: -1, Color1: 501, Color2: 502, Pz: -283.04, E: 283.04, Spin: 1},
			{ID: 6, Status: 1, Mother1: 1, Mother2: 2, Color1: 503, Px: 190.13, Py: -12.88, Pz: 286.11, E: 394.71, M: 173, Spin: -1},
			{ID: -6, Status: 1, Mother1: 1, Mother2: 2, Color2: 502, Px: -190.13, Py: 12.88, Pz: 80.67, E: 538.15, M: 173, Spin: 1},
		},
		Weights: []lhef.Weight{
			{ID: "1001", Value: weight},
			{ID: "1002", Value: weight * 0.5},
			{ID: "2001", Value: weight * 2},
		},
	}
}

// u ubar -> mu+ mu- under process 2
func zmumuEvent(weight float64) *lhef.Event {
	return &lhef.Event{
		EventInfo: lhef.EventInfo{
			NParticles: 4,
			ProcID:     2,
			Weight:     weight,
			Scale:      91.188,
			AlphaQED:   0.0075562731,
			AlphaQCD:   0.1180,
		},
		Particles: []lhef.Particle{
			{ID: 2, Status: -1, Color1: 501, Pz: 112.5, E: 112.5, Spin: -1},
			{ID: -2, Status: -1, Color2: 501, Pz: -18.48, E: 18.48, Spin: 1},
			{ID: -13, Status: 1, Mother1: 1, Mother2: 2, Px: 30.21, Py: -41.5, Pz: 52.33, E: 73.31, M: 0.10566, Spin: 1},
			{ID: 13, Status: 1, Mother1: 1, Mother2: 2, Px: -30.21, Py: 41.5, Pz: 41.69, E: 57.67, M: 0.10566, Spin: -1},
		},
		Weights: []lhef.Weight{
			{ID: "1001", Value: weight},
			{ID: "1002", Value: weight * 0.5},
			{ID: "2001", Value: weight * 2},
		},
	}
}

// writeSample produces an LHE file from in-memory events.
func writeSample(t *testing.T, name string, init *lhef.Init, events ...*lhef.Event) {
	t.Helper()
	_, err := lheutils.WriteFile(name, init, lheutils.NewSliceStream(events...), lheutils.WriteOptions{})
	require.NoError(t, err)
}

// errStream fails after yielding its events, the shape of a truncated file.
type errStream struct {
	events []*lhef.Event
	err    error
	i      int
}

func (s *errStream) Next() bool {
	if s.i >= len(s.events) {
		return false
	}
	s.i++
	return true
}

func (s *errStream) Event() *lhef.Event {
	return s.events[s.i-1]
}

func (s *errStream) Err() error {
	return s.err
}
