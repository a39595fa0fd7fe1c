package lhef

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WeightMode selects how per-event alternate weights are serialized.
type WeightMode int

const (
	// WeightModeRwgt writes one <wgt id='...'> line per weight. This is the
	// form most tools emit and the default.
	WeightModeRwgt WeightMode = iota
	// WeightModeWeights writes the compact <weights> block: bare values in
	// init weight-table order. Every event must carry every init weight.
	WeightModeWeights
	// WeightModeNone strips per-event weights. The init weight table is kept.
	WeightModeNone
)

// ParseWeightMode maps the command-line spellings rwgt, weights and none.
func ParseWeightMode(s string) (WeightMode, error) {
	switch s {
	case "rwgt":
		return WeightModeRwgt, nil
	case "weights":
		return WeightModeWeights, nil
	case "none":
		return WeightModeNone, nil
	}
	return 0, fmt.Errorf("unknown weight format %q, want rwgt, weights or none", s)
}

func (m WeightMode) String() string {
	switch m {
	case WeightModeRwgt:
		return "rwgt"
	case WeightModeWeights:
		return "weights"
	case WeightModeNone:
		return "none"
	}
	return fmt.Sprintf("WeightMode(%d)", int(m))
}

// Encoder writes an LHE stream: WriteInit once, WriteEvent per event, Close
// to emit the closing tag and flush. Close does not close the underlying
// writer.
type Encoder struct {
	w         *bufio.Writer
	mode      WeightMode
	ids       []string
	wroteInit bool
	closed    bool
}

// NewEncoder returns an Encoder writing to w with WeightModeRwgt.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriterSize(w, 1<<16)}
}

// SetWeightMode selects the per-event weight serialization. It must be called
// before WriteEvent.
func (e *Encoder) SetWeightMode(mode WeightMode) {
	e.mode = mode
}

// WriteInit writes the <LesHouchesEvents> open tag, the verbatim header if
// any, and the <init> block. NPRUP is recomputed from ProcInfo.
func (e *Encoder) WriteInit(init *Init) error {
	if e.wroteInit {
		return fmt.Errorf("init block already written")
	}
	e.wroteInit = true
	e.ids = init.WeightIDs()

	ew := &errWriter{w: e.w}
	version := init.Version
	if version == "" {
		version = "3.0"
	}
	ew.printf("<LesHouchesEvents version=%q>\n", version)
	if init.Header != "" {
		ew.writeString(init.Header)
		ew.writeString("\n")
	}
	writeInitBlock(ew, init)
	return ew.err
}

// WriteEvent writes one <event> block. NUP is recomputed from Particles.
// With WeightModeWeights the event must define every init weight; extra
// event weights unknown to the init table are dropped by that mode.
func (e *Encoder) WriteEvent(ev *Event) error {
	if !e.wroteInit {
		return fmt.Errorf("WriteEvent before WriteInit")
	}
	ew := &errWriter{w: e.w}
	if err := writeEventBlock(ew, ev, e.mode, e.ids); err != nil {
		return err
	}
	return ew.err
}

// Close writes the closing </LesHouchesEvents> tag and flushes.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	ew := &errWriter{w: e.w}
	ew.writeString("</LesHouchesEvents>\n")
	if ew.err != nil {
		return ew.err
	}
	return e.w.Flush()
}

// String renders the <init> block alone, without the surrounding document.
func (init *Init) String() string {
	var b strings.Builder
	writeInitBlock(&errWriter{w: &b}, init)
	return b.String()
}

// String renders the <event> block with weights in <rwgt> form.
func (ev *Event) String() string {
	var b strings.Builder
	writeEventBlock(&errWriter{w: &b}, ev, WeightModeRwgt, nil)
	return b.String()
}

// errWriter latches the first write error so block writers can run straight
// through.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) writeString(s string) {
	if ew.err == nil {
		_, ew.err = io.WriteString(ew.w, s)
	}
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err == nil {
		_, ew.err = fmt.Fprintf(ew.w, format, args...)
	}
}

func (ew *errWriter) line(fields ...string) {
	ew.writeString(" ")
	ew.writeString(strings.Join(fields, " "))
	ew.writeString("\n")
}

func writeInitBlock(ew *errWriter, init *Init) {
	ew.writeString("<init>\n")
	info := init.InitInfo
	ew.line(
		formatInt(info.BeamA), formatInt(info.BeamB),
		formatFloat(info.EnergyA), formatFloat(info.EnergyB),
		formatInt(info.PDFGroupA), formatInt(info.PDFGroupB),
		formatInt(info.PDFSetA), formatInt(info.PDFSetB),
		formatInt(info.WeightingStrategy), formatInt(int64(len(init.ProcInfo))),
	)
	for _, p := range init.ProcInfo {
		ew.line(
			formatFloat(p.XSection), formatFloat(p.XError),
			formatFloat(p.XMax), formatInt(p.ProcID),
		)
	}
	if init.NumWeights() > 0 {
		ew.writeString("<initrwgt>\n")
		for _, wg := range init.WeightGroups {
			switch {
			case wg.Name != "" && wg.Combine != "":
				ew.printf("<weightgroup name='%s' combine='%s'>\n", wg.Name, wg.Combine)
			case wg.Name != "":
				ew.printf("<weightgroup name='%s'>\n", wg.Name)
			default:
				ew.writeString("<weightgroup>\n")
			}
			for _, w := range wg.Weights {
				ew.printf("<weight id='%s'>%s</weight>\n", w.ID, w.Text)
			}
			ew.writeString("</weightgroup>\n")
		}
		ew.writeString("</initrwgt>\n")
	}
	ew.writeString("</init>\n")
}

func writeEventBlock(ew *errWriter, ev *Event, mode WeightMode, ids []string) error {
	ew.writeString("<event>\n")
	info := ev.EventInfo
	ew.line(
		formatInt(int64(len(ev.Particles))), formatInt(info.ProcID),
		formatFloat(info.Weight), formatFloat(info.Scale),
		formatFloat(info.AlphaQED), formatFloat(info.AlphaQCD),
	)
	for _, p := range ev.Particles {
		ew.line(
			formatInt(p.ID), formatInt(p.Status),
			formatInt(p.Mother1), formatInt(p.Mother2),
			formatInt(p.Color1), formatInt(p.Color2),
			formatFloat(p.Px), formatFloat(p.Py), formatFloat(p.Pz),
			formatFloat(p.E), formatFloat(p.M),
			formatFloat(p.Lifetime), formatFloat(p.Spin),
		)
	}
	switch mode {
	case WeightModeRwgt:
		if len(ev.Weights) > 0 {
			ew.writeString("<rwgt>\n")
			for _, w := range ev.Weights {
				ew.printf("<wgt id='%s'>%s</wgt>\n", w.ID, formatFloat(w.Value))
			}
			ew.writeString("</rwgt>\n")
		}
	case WeightModeWeights:
		if len(ids) > 0 {
			values := make([]string, len(ids))
			for i, id := range ids {
				v, ok := ev.Weight(id)
				if !ok {
					return fmt.Errorf("event has no weight %q required by the <weights> block", id)
				}
				values[i] = formatFloat(v)
			}
			ew.writeString("<weights>")
			for _, v := range values {
				ew.writeString(" ")
				ew.writeString(v)
			}
			ew.writeString(" </weights>\n")
		}
	case WeightModeNone:
		// dropped
	}
	ew.writeString("</event>\n")
	return nil
}
