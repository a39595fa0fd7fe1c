// Package lhef reads and writes Les Houches Event files (hep-ph/0609017),
// including the LHE v3 reweighting extensions (<initrwgt> weight groups and
// per-event <rwgt>/<weights> blocks). Events are decoded one at a time; a
// file is never materialized in memory.
package lhef

import "strconv"

// InitInfo is the first line of the <init> block. Field comments give the
// Fortran names from the Les Houches accord.
type InitInfo struct {
	BeamA             int64   // IDBMUP(1): PDG id of beam A
	BeamB             int64   // IDBMUP(2): PDG id of beam B
	EnergyA           float64 // EBMUP(1): beam A energy in GeV
	EnergyB           float64 // EBMUP(2): beam B energy in GeV
	PDFGroupA         int64   // PDFGUP(1)
	PDFGroupB         int64   // PDFGUP(2)
	PDFSetA           int64   // PDFSUP(1)
	PDFSetB           int64   // PDFSUP(2)
	WeightingStrategy int64   // IDWTUP
	NumProcesses      int64   // NPRUP, rewritten on encode
}

// ProcInfo is one process line of the <init> block.
type ProcInfo struct {
	XSection float64 // XSECUP: cross-section in pb
	XError   float64 // XERRUP: statistical error in pb
	XMax     float64 // XMAXUP
	ProcID   int64   // LPRUP
}

// WeightInfo is one <weight> entry of a weight group. Index is the position
// used by the compact per-event <weights> block; indices are unique across
// all groups of one Init.
type WeightInfo struct {
	ID    string
	Text  string
	Index int
}

// WeightGroup is one <weightgroup> of the <initrwgt> block. Weights keeps
// file order.
type WeightGroup struct {
	Name    string
	Combine string
	Weights []WeightInfo
}

// Init is the shared header of an LHE file: one per file, common to all of
// its events.
type Init struct {
	Version      string // version attribute of <LesHouchesEvents>
	Header       string // raw <header> block, verbatim, empty if absent
	InitInfo     InitInfo
	ProcInfo     []ProcInfo
	WeightGroups []WeightGroup
}

// EventInfo is the first line of an <event> block.
type EventInfo struct {
	NParticles int64   // NUP, rewritten on encode
	ProcID     int64   // IDPRUP
	Weight     float64 // XWGTUP: central event weight
	Scale      float64 // SCALUP in GeV
	AlphaQED   float64 // AQEDUP
	AlphaQCD   float64 // AQCDUP
}

// Particle is one particle line of an <event> block.
type Particle struct {
	ID       int64   // IDUP: PDG id
	Status   int64   // ISTUP: -1 incoming, +1 outgoing
	Mother1  int64   // MOTHUP(1)
	Mother2  int64   // MOTHUP(2)
	Color1   int64   // ICOLUP(1)
	Color2   int64   // ICOLUP(2)
	Px       float64 // PUP(1)
	Py       float64 // PUP(2)
	Pz       float64 // PUP(3)
	E        float64 // PUP(4)
	M        float64 // PUP(5)
	Lifetime float64 // VTIMUP
	Spin     float64 // SPINUP
}

// Weight is one named alternate weight of an event.
type Weight struct {
	ID    string
	Value float64
}

// Event is one collision event. Weights keeps file order; lookups go through
// Weight and SetWeight.
type Event struct {
	EventInfo EventInfo
	Particles []Particle
	Weights   []Weight
}

// Weight returns the alternate weight with the given id.
func (ev *Event) Weight(id string) (float64, bool) {
	for _, w := range ev.Weights {
		if w.ID == id {
			return w.Value, true
		}
	}
	return 0, false
}

// SetWeight inserts or replaces the alternate weight with the given id,
// preserving the position of an existing entry.
func (ev *Event) SetWeight(id string, value float64) {
	for i, w := range ev.Weights {
		if w.ID == id {
			ev.Weights[i].Value = value
			return
		}
	}
	ev.Weights = append(ev.Weights, Weight{ID: id, Value: value})
}

// FindWeight returns the weight definition with the given id, searching all
// groups.
func (init *Init) FindWeight(id string) (WeightInfo, bool) {
	for _, wg := range init.WeightGroups {
		for _, w := range wg.Weights {
			if w.ID == id {
				return w, true
			}
		}
	}
	return WeightInfo{}, false
}

// MaxWeightIndex returns the largest weight index present in any group, or 0
// if there are no weights.
func (init *Init) MaxWeightIndex() int {
	max := 0
	for _, wg := range init.WeightGroups {
		for _, w := range wg.Weights {
			if w.Index > max {
				max = w.Index
			}
		}
	}
	return max
}

// NumWeights returns the total number of weight definitions over all groups.
func (init *Init) NumWeights() int {
	n := 0
	for _, wg := range init.WeightGroups {
		n += len(wg.Weights)
	}
	return n
}

// WeightIDs returns all weight ids ordered by index. This is the value order
// of the compact per-event <weights> block.
func (init *Init) WeightIDs() []string {
	type entry struct {
		id    string
		index int
	}
	entries := make([]entry, 0, init.NumWeights())
	for _, wg := range init.WeightGroups {
		for _, w := range wg.Weights {
			entries = append(entries, entry{id: w.ID, index: w.Index})
		}
	}
	// insertion sort by index; weight tables are small
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].index < entries[j-1].index; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// Equal reports whether two Inits are structurally identical, comparing every
// field of every record. Merging relies on this, so the comparison is spelled
// out instead of delegated to reflection.
func (init *Init) Equal(other *Init) bool {
	if init == nil || other == nil {
		return init == other
	}
	if init.Version != other.Version || init.Header != other.Header {
		return false
	}
	if init.InitInfo != other.InitInfo {
		return false
	}
	if len(init.ProcInfo) != len(other.ProcInfo) {
		return false
	}
	for i, p := range init.ProcInfo {
		if p != other.ProcInfo[i] {
			return false
		}
	}
	if len(init.WeightGroups) != len(other.WeightGroups) {
		return false
	}
	for i, wg := range init.WeightGroups {
		og := other.WeightGroups[i]
		if wg.Name != og.Name || wg.Combine != og.Combine {
			return false
		}
		if len(wg.Weights) != len(og.Weights) {
			return false
		}
		for j, w := range wg.Weights {
			if w != og.Weights[j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the Init. Transforms mutate the weight table,
// and a source Init may be shared (merge keeps the first source's Init), so
// mutations are applied to copies.
func (init *Init) Clone() *Init {
	c := &Init{
		Version:  init.Version,
		Header:   init.Header,
		InitInfo: init.InitInfo,
	}
	c.ProcInfo = append([]ProcInfo(nil), init.ProcInfo...)
	c.WeightGroups = make([]WeightGroup, len(init.WeightGroups))
	for i, wg := range init.WeightGroups {
		c.WeightGroups[i] = WeightGroup{
			Name:    wg.Name,
			Combine: wg.Combine,
			Weights: append([]WeightInfo(nil), wg.Weights...),
		}
	}
	return c
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', 10, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
