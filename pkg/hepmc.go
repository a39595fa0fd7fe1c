package lheutils

import (
	"fmt"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/hepmc"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/next-exp/lheutils/lhef"
)

// ToHepMC converts one event, flattening it onto a single interaction
// vertex. Incoming particles (negative status) enter the vertex, everything
// else leaves it; the first two incoming particles become the beams.
func ToHepMC(init *lhef.Init, event *lhef.Event, number int) (*hepmc.Event, error) {
	info := event.EventInfo
	evt := &hepmc.Event{
		EventNumber:     number,
		SignalProcessID: int(info.ProcID),
		Scale:           info.Scale,
		AlphaQED:        info.AlphaQED,
		AlphaQCD:        info.AlphaQCD,
		Particles:       make(map[int]*hepmc.Particle, len(event.Particles)),
		Vertices:        make(map[int]*hepmc.Vertex, 1),
		Weights:         hepmc.NewWeights(),
		MomentumUnit:    hepmc.GEV,
		LengthUnit:      hepmc.MM,
	}

	// central weight first, alternates in file order
	if err := evt.Weights.Add("0", info.Weight); err != nil {
		return nil, err
	}
	for _, w := range event.Weights {
		if err := evt.Weights.Add(w.ID, w.Value); err != nil {
			return nil, fmt.Errorf("error converting weight %q: %w", w.ID, err)
		}
	}

	for _, proc := range init.ProcInfo {
		if proc.ProcID == info.ProcID {
			evt.CrossSection = &hepmc.CrossSection{Value: proc.XSection, Error: proc.XError}
			break
		}
	}

	vtx := &hepmc.Vertex{Barcode: -1}
	if err := evt.AddVertex(vtx); err != nil {
		return nil, err
	}

	nbeams := 0
	for i := range event.Particles {
		p := &event.Particles[i]
		hp := &hepmc.Particle{
			Momentum:      fmom.NewPxPyPzE(p.Px, p.Py, p.Pz, p.E),
			PdgID:         p.ID,
			Status:        int(p.Status),
			GeneratedMass: p.M,
			Barcode:       i + 1,
		}
		if p.Color1 != 0 || p.Color2 != 0 {
			hp.Flow = hepmc.Flow{
				Particle: hp,
				Icode:    map[int]int{1: int(p.Color1), 2: int(p.Color2)},
			}
		}
		evt.Particles[hp.Barcode] = hp

		var err error
		if p.Status < 0 {
			err = vtx.AddParticleIn(hp)
			if nbeams < 2 {
				evt.Beams[nbeams] = hp
				nbeams++
			}
		} else {
			err = vtx.AddParticleOut(hp)
		}
		if err != nil {
			return nil, err
		}
	}
	evt.SignalVertex = vtx
	return evt, nil
}

// FromHepMC converts one event back. Particles are laid out in barcode
// order; mothers are recovered from the production vertices. Lifetime and
// spin have no HepMC counterpart and come out as 0 and 9.
func FromHepMC(evt *hepmc.Event) (*lhef.Event, error) {
	barcodes := maps.Keys(evt.Particles)
	slices.Sort(barcodes)

	position := make(map[int]int, len(barcodes)) // barcode -> 1-based particle line
	for i, bc := range barcodes {
		position[bc] = i + 1
	}

	out := &lhef.Event{}
	for _, bc := range barcodes {
		hp := evt.Particles[bc]
		p := lhef.Particle{
			ID:     hp.PdgID,
			Status: int64(hp.Status),
			Px:     hp.Momentum.Px(),
			Py:     hp.Momentum.Py(),
			Pz:     hp.Momentum.Pz(),
			E:      hp.Momentum.E(),
			M:      hp.GeneratedMass,
			Spin:   9,
		}
		if hp.Flow.Icode != nil {
			p.Color1 = int64(hp.Flow.Icode[1])
			p.Color2 = int64(hp.Flow.Icode[2])
		}
		if hp.ProdVertex != nil && len(hp.ProdVertex.ParticlesIn) > 0 {
			in := hp.ProdVertex.ParticlesIn
			p.Mother1 = int64(position[in[0].Barcode])
			p.Mother2 = int64(position[in[len(in)-1].Barcode])
		}
		out.Particles = append(out.Particles, p)
	}

	weight := 1.0
	if len(evt.Weights.Slice) > 0 {
		weight = evt.Weights.Slice[0]
	}
	out.EventInfo = lhef.EventInfo{
		NParticles: int64(len(out.Particles)),
		ProcID:     int64(evt.SignalProcessID),
		Weight:     weight,
		Scale:      evt.Scale,
		AlphaQED:   evt.AlphaQED,
		AlphaQCD:   evt.AlphaQCD,
	}
	return out, nil
}

// SyntheticInit is the run header used when the source format carries no
// run information. Beam ids of -1 mark the beams as unknown; the single
// zeroed process entry keeps the block self-consistent.
func SyntheticInit() *lhef.Init {
	return &lhef.Init{
		Version: "3.0",
		InitInfo: lhef.InitInfo{
			BeamA:             -1,
			BeamB:             -1,
			WeightingStrategy: 1,
			NumProcesses:      1,
		},
		ProcInfo: []lhef.ProcInfo{{ProcID: 1}},
	}
}
