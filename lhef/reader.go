package lhef

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrTruncated reports a stream that ended before its closing
// </LesHouchesEvents> tag. Everything decoded up to that point is valid.
var ErrTruncated = errors.New("truncated stream, missing </LesHouchesEvents>")

// ParseError represents an error when decoding a malformed LHE line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Reader decodes an LHE stream one event at a time:
//
//	r, err := lhef.Open(name)
//	...
//	for r.Next() {
//		ev := r.Event()
//		...
//	}
//	err = r.Err()
//
// The <init> block is decoded when the Reader is created and served from
// Init. Gzip streams are detected and decompressed transparently.
type Reader struct {
	src    *bufio.Reader
	closer io.Closer
	init   *Init
	evt    *Event
	err    error
	done   bool
	line   int
	atEOF  bool
}

// Open opens the named file for decoding. Callers must Close the Reader.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader decodes an LHE stream from src. The prolog and <init> block are
// consumed before NewReader returns.
func NewReader(src io.Reader) (*Reader, error) {
	buf := bufio.NewReaderSize(src, 1<<16)
	if magic, err := buf.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buf)
		if err != nil {
			return nil, err
		}
		buf = bufio.NewReaderSize(gz, 1<<16)
	}
	r := &Reader{src: buf}
	if err := r.readInit(); err != nil {
		return nil, err
	}
	return r, nil
}

// Init returns the decoded header. The Reader keeps ownership; callers that
// mutate it must Clone first.
func (r *Reader) Init() *Init {
	return r.init
}

// Next advances to the next event. It returns false when the stream is
// exhausted or an error occurred; Err tells the two apart.
func (r *Reader) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	ev, err := r.readEvent()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		r.done = true
		return false
	}
	r.evt = ev
	return true
}

// Event returns the event decoded by the last successful Next.
func (r *Reader) Event() *Event {
	return r.evt
}

// Err returns the first error encountered while decoding events.
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying file if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// readLine returns the next line with line endings stripped. io.EOF is
// returned only for a clean end of stream; a final unterminated line is
// returned with atEOF set so parse failures on it count as truncation.
func (r *Reader) readLine() (string, error) {
	line, err := r.src.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			r.atEOF = true
			if line == "" {
				return "", io.EOF
			}
		} else {
			return "", err
		}
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// readDataLine skips blank lines and # comments.
func (r *Reader) readDataLine() (string, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return "", err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed, nil
	}
}

func (r *Reader) parseError(format string, args ...any) error {
	if r.atEOF {
		// the offending line was cut off by the end of the stream
		return ErrTruncated
	}
	return &ParseError{Line: r.line, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) readInit() error {
	init := &Init{}

	// prolog: everything up to and including <LesHouchesEvents>
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		if strings.HasPrefix(line, "<?") {
			continue
		}
		if strings.HasPrefix(line, "<!--") {
			if err := r.skipComment(line); err != nil {
				return err
			}
			continue
		}
		if isTag(line, "LesHouchesEvents") {
			init.Version = tagAttr(line, "version")
			break
		}
		return r.parseError("expected <LesHouchesEvents>, got %q", line)
	}

	// optional <header>, then <init>
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		switch {
		case isTag(line, "header"):
			if err := r.readHeader(init, line); err != nil {
				return err
			}
		case isTag(line, "init"):
			if err := r.readInitBody(init); err != nil {
				return err
			}
			r.init = init
			return nil
		case strings.HasPrefix(line, "<!--"):
			if err := r.skipComment(line); err != nil {
				return err
			}
		default:
			return r.parseError("expected <init>, got %q", line)
		}
	}
}

// readHeader captures the <header> block verbatim, open and close tags
// included, so generator banners survive a round trip untouched.
func (r *Reader) readHeader(init *Init, open string) error {
	var b strings.Builder
	b.WriteString(open)
	if strings.Contains(open, "</header>") {
		init.Header = b.String()
		return nil
	}
	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		b.WriteByte('\n')
		b.WriteString(line)
		if strings.Contains(line, "</header>") {
			init.Header = b.String()
			return nil
		}
	}
}

func (r *Reader) readInitBody(init *Init) error {
	line, err := r.readDataLine()
	if err != nil {
		if err == io.EOF {
			return ErrTruncated
		}
		return err
	}
	fields := strings.Fields(line)
	if len(fields) != 10 {
		return r.parseError("init line has %d fields, want 10", len(fields))
	}
	info := &init.InitInfo
	for i, dst := range []*int64{&info.BeamA, &info.BeamB} {
		if *dst, err = parseInt(fields[i]); err != nil {
			return r.parseError("bad beam id %q", fields[i])
		}
	}
	for i, dst := range []*float64{&info.EnergyA, &info.EnergyB} {
		if *dst, err = strconv.ParseFloat(fields[2+i], 64); err != nil {
			return r.parseError("bad beam energy %q", fields[2+i])
		}
	}
	ints := []*int64{
		&info.PDFGroupA, &info.PDFGroupB,
		&info.PDFSetA, &info.PDFSetB,
		&info.WeightingStrategy, &info.NumProcesses,
	}
	for i, dst := range ints {
		if *dst, err = parseInt(fields[4+i]); err != nil {
			return r.parseError("bad init field %q", fields[4+i])
		}
	}
	if info.NumProcesses < 0 {
		return r.parseError("negative process count %d", info.NumProcesses)
	}

	init.ProcInfo = make([]ProcInfo, 0, info.NumProcesses)
	for i := int64(0); i < info.NumProcesses; i++ {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return r.parseError("process line has %d fields, want 4", len(fields))
		}
		var p ProcInfo
		if p.XSection, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return r.parseError("bad cross-section %q", fields[0])
		}
		if p.XError, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return r.parseError("bad cross-section error %q", fields[1])
		}
		if p.XMax, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return r.parseError("bad maximum weight %q", fields[2])
		}
		if p.ProcID, err = parseInt(fields[3]); err != nil {
			return r.parseError("bad process id %q", fields[3])
		}
		init.ProcInfo = append(init.ProcInfo, p)
	}

	// trailing init content: <initrwgt> plus anything a generator appended
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		switch {
		case strings.HasPrefix(line, "</init>"):
			return nil
		case strings.HasPrefix(line, "<initrwgt"):
			if err := r.readInitRwgt(init); err != nil {
				return err
			}
		case strings.HasPrefix(line, "<!--"):
			if err := r.skipComment(line); err != nil {
				return err
			}
		default:
			// generator-specific block, skip it
		}
	}
}

func (r *Reader) readInitRwgt(init *Init) error {
	index := 0
	var group *WeightGroup
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		switch {
		case strings.HasPrefix(line, "</initrwgt>"):
			return nil
		case isTag(line, "weightgroup"):
			init.WeightGroups = append(init.WeightGroups, WeightGroup{
				Name:    firstTagAttr(line, "name", "type"),
				Combine: tagAttr(line, "combine"),
			})
			group = &init.WeightGroups[len(init.WeightGroups)-1]
		case strings.HasPrefix(line, "</weightgroup>"):
			group = nil
		case isTag(line, "weight"):
			id := tagAttr(line, "id")
			if id == "" {
				return r.parseError("weight definition without id: %q", line)
			}
			if group == nil {
				// tolerate groupless weights the way pythonic readers do:
				// collect them under an unnamed group
				init.WeightGroups = append(init.WeightGroups, WeightGroup{})
				group = &init.WeightGroups[len(init.WeightGroups)-1]
			}
			index++
			group.Weights = append(group.Weights, WeightInfo{
				ID:    id,
				Text:  tagText(line),
				Index: index,
			})
		default:
			return r.parseError("unexpected line in <initrwgt>: %q", line)
		}
	}
}

func (r *Reader) readEvent() (*Event, error) {
	// scan for the next <event>; anything between events is ignored
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return nil, ErrTruncated
			}
			return nil, err
		}
		if isTag(line, "event") {
			break
		}
		if strings.HasPrefix(line, "</LesHouchesEvents>") {
			return nil, io.EOF
		}
		if strings.HasPrefix(line, "<!--") {
			if err := r.skipComment(line); err != nil {
				return nil, err
			}
		}
	}

	line, err := r.readDataLine()
	if err != nil {
		if err == io.EOF {
			return nil, ErrTruncated
		}
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return nil, r.parseError("event line has %d fields, want 6", len(fields))
	}
	ev := &Event{}
	info := &ev.EventInfo
	if info.NParticles, err = parseInt(fields[0]); err != nil {
		return nil, r.parseError("bad particle count %q", fields[0])
	}
	if info.NParticles < 0 {
		return nil, r.parseError("negative particle count %d", info.NParticles)
	}
	if info.ProcID, err = parseInt(fields[1]); err != nil {
		return nil, r.parseError("bad process id %q", fields[1])
	}
	floats := []*float64{&info.Weight, &info.Scale, &info.AlphaQED, &info.AlphaQCD}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(fields[2+i], 64); err != nil {
			return nil, r.parseError("bad event field %q", fields[2+i])
		}
	}

	ev.Particles = make([]Particle, 0, info.NParticles)
	for i := int64(0); i < info.NParticles; i++ {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return nil, ErrTruncated
			}
			return nil, err
		}
		p, err := r.parseParticle(line)
		if err != nil {
			return nil, err
		}
		ev.Particles = append(ev.Particles, p)
	}

	// trailing event content: weights, comments, generator blocks
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return nil, ErrTruncated
			}
			return nil, err
		}
		switch {
		case strings.HasPrefix(line, "</event>"):
			return ev, nil
		case isTag(line, "rwgt"):
			if err := r.readRwgt(ev); err != nil {
				return nil, err
			}
		case isTag(line, "weights"):
			if err := r.readWeights(ev, line); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "<!--"):
			if err := r.skipComment(line); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "<"):
			if err := r.skipBlock(line); err != nil {
				return nil, err
			}
		default:
			return nil, r.parseError("unexpected line in <event>: %q", line)
		}
	}
}

func (r *Reader) parseParticle(line string) (Particle, error) {
	var p Particle
	fields := strings.Fields(line)
	if len(fields) != 13 {
		return p, r.parseError("particle line has %d fields, want 13", len(fields))
	}
	var err error
	ints := []*int64{&p.ID, &p.Status, &p.Mother1, &p.Mother2, &p.Color1, &p.Color2}
	for i, dst := range ints {
		if *dst, err = parseInt(fields[i]); err != nil {
			return p, r.parseError("bad particle field %q", fields[i])
		}
	}
	floats := []*float64{&p.Px, &p.Py, &p.Pz, &p.E, &p.M, &p.Lifetime, &p.Spin}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(fields[6+i], 64); err != nil {
			return p, r.parseError("bad particle field %q", fields[6+i])
		}
	}
	return p, nil
}

// readRwgt decodes a <rwgt> block of <wgt id='...'>value</wgt> lines.
func (r *Reader) readRwgt(ev *Event) error {
	for {
		line, err := r.readDataLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		switch {
		case strings.HasPrefix(line, "</rwgt>"):
			return nil
		case isTag(line, "wgt"):
			id := tagAttr(line, "id")
			if id == "" {
				return r.parseError("event weight without id: %q", line)
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(tagText(line)), 64)
			if err != nil {
				return r.parseError("bad event weight value in %q", line)
			}
			ev.Weights = append(ev.Weights, Weight{ID: id, Value: value})
		default:
			return r.parseError("unexpected line in <rwgt>: %q", line)
		}
	}
}

// readWeights decodes the compact <weights> block: whitespace-separated
// values in init weight-table order.
func (r *Reader) readWeights(ev *Event, open string) error {
	ids := []string(nil)
	if r.init != nil {
		ids = r.init.WeightIDs()
	}
	text := open
	for !strings.Contains(text, "</weights>") {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		text += " " + line
	}
	if i := strings.Index(text, ">"); i >= 0 {
		text = text[i+1:]
	}
	text = strings.ReplaceAll(text, "</weights>", " ")
	values := strings.Fields(text)
	if len(values) > len(ids) {
		return r.parseError("<weights> block has %d values, init defines %d", len(values), len(ids))
	}
	for i, v := range values {
		value, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return r.parseError("bad weight value %q", v)
		}
		ev.Weights = append(ev.Weights, Weight{ID: ids[i], Value: value})
	}
	return nil
}

// skipBlock discards a generator-specific element such as <mgrwt> or
// <clustering> up to its closing tag. Blocks of the same name do not nest in
// practice.
func (r *Reader) skipBlock(open string) error {
	if strings.HasPrefix(open, "</") {
		return r.parseError("unexpected closing tag %q", open)
	}
	name := open[1:]
	for i, c := range name {
		if c == ' ' || c == '>' || c == '\t' {
			name = name[:i]
			break
		}
	}
	if name == "" {
		return r.parseError("unexpected line in <event>: %q", open)
	}
	closing := "</" + name + ">"
	if strings.Contains(open, closing) || strings.Contains(open, "/>") {
		return nil
	}
	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		if strings.Contains(line, closing) {
			return nil
		}
	}
}

func (r *Reader) skipComment(open string) error {
	if strings.Contains(open, "-->") {
		return nil
	}
	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF {
				return ErrTruncated
			}
			return err
		}
		if strings.Contains(line, "-->") {
			return nil
		}
	}
}

// parseInt accepts plain integers plus the float spellings some generators
// emit for integer fields, e.g. "2." or "1.0000000E+00".
func parseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// isTag reports whether line opens the named element, with or without
// attributes. A plain prefix test would confuse <weight> with <weightgroup>.
func isTag(line, name string) bool {
	if !strings.HasPrefix(line, "<"+name) {
		return false
	}
	rest := line[len(name)+1:]
	if rest == "" {
		return true
	}
	return rest[0] == '>' || rest[0] == ' ' || rest[0] == '\t' || strings.HasPrefix(rest, "/>")
}

// tagAttr extracts a quoted attribute value from a single-line tag. Both
// quote styles appear in the wild.
func tagAttr(line, name string) string {
	for _, quote := range []string{"'", `"`} {
		marker := name + "=" + quote
		start := strings.Index(line, marker)
		if start < 0 {
			continue
		}
		rest := line[start+len(marker):]
		end := strings.Index(rest, quote)
		if end < 0 {
			return ""
		}
		return rest[:end]
	}
	return ""
}

func firstTagAttr(line string, names ...string) string {
	for _, name := range names {
		if v := tagAttr(line, name); v != "" {
			return v
		}
	}
	return ""
}

// tagText returns the text between the first '>' and the last '<' of a
// single-line element like <weight id='1'> muR=1 </weight>.
func tagText(line string) string {
	start := strings.Index(line, ">")
	end := strings.LastIndex(line, "<")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(line[start+1 : end])
}
