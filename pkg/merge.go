package lheutils

import (
	"fmt"

	"github.com/next-exp/lheutils/lhef"
)

// MergedStream concatenates the events of several LHE files after verifying
// that every init block matches the first one. It implements EventStream.
type MergedStream struct {
	names   []string
	readers []*lhef.Reader
	init    *lhef.Init
	current int
	evt     *lhef.Event
	err     error
	total   int
}

// Merge opens all named files and validates them for concatenation: at least
// two distinct files, every one readable, every init block identical to the
// first. On error nothing stays open.
func Merge(names ...string) (*MergedStream, error) {
	if len(names) < 2 {
		return nil, &ErrIncompatibleOptions{Reason: "at least two input files are required for merging"}
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, &ErrIncompatibleOptions{Reason: fmt.Sprintf("duplicate input file %q", name)}
		}
		seen[name] = true
	}

	s := &MergedStream{names: names}
	for _, name := range names {
		r, err := lhef.Open(name)
		if err != nil {
			s.Close()
			return nil, &ErrOpenFile{Filename: name, Err: err}
		}
		s.readers = append(s.readers, r)
		if s.init == nil {
			s.init = r.Init()
			continue
		}
		if !s.init.Equal(r.Init()) {
			s.Close()
			return nil, &ErrIncompatibleHeaders{File: name}
		}
	}
	logInfo(fmt.Sprintf("Merging %d files", len(names)), "merge")
	return s, nil
}

// Init returns the shared init block, owned by the first reader.
func (s *MergedStream) Init() *lhef.Init {
	return s.init
}

func (s *MergedStream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.current < len(s.readers) {
		r := s.readers[s.current]
		if r.Next() {
			s.evt = r.Event()
			s.total++
			return true
		}
		if err := r.Err(); err != nil {
			s.err = fmt.Errorf("%s: %w", s.names[s.current], err)
			return false
		}
		s.current++
	}
	return false
}

func (s *MergedStream) Event() *lhef.Event {
	return s.evt
}

func (s *MergedStream) Err() error {
	return s.err
}

// Total returns the number of events yielded so far.
func (s *MergedStream) Total() int {
	return s.total
}

// Close closes every underlying reader, returning the first close error.
func (s *MergedStream) Close() error {
	var first error
	for _, r := range s.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
