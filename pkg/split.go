package lheutils

import (
	"fmt"
	"strings"

	"github.com/next-exp/lheutils/lhef"
)

// SplitReport lists the chunk files written and the events they hold.
type SplitReport struct {
	Files  []string
	Events int
}

// ChunkName derives the i-th chunk filename by inserting _i before the first
// dot of base, keeping multi-part extensions like .lhe.gz intact. A base
// without extension gets the suffix appended.
func ChunkName(base string, i int) string {
	if dot := strings.Index(base, "."); dot >= 0 {
		return fmt.Sprintf("%s_%d%s", base[:dot], i, base[dot:])
	}
	return fmt.Sprintf("%s_%d", base, i)
}

// Split distributes the events of src over numbered chunk files holding size
// events each, every chunk carrying the same init block. Chunks are numbered
// from 1. An empty source still produces its first, empty chunk; a source
// ending exactly on a chunk boundary produces no trailing empty chunk.
func Split(init *lhef.Init, src EventStream, base string, size int, opts WriteOptions) (*SplitReport, error) {
	if size <= 0 {
		return nil, &ErrInvalidChunkSize{Size: size}
	}

	report := &SplitReport{}
	var carry *lhef.Event
	for i := 1; ; i++ {
		chunk := &boundedStream{src: src, limit: size, carry: carry}
		carry = nil
		res, err := WriteFile(ChunkName(base, i), init, chunk, opts)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, res.Filename)
		report.Events += res.Events
		if res.Truncated || res.Events < size {
			break
		}
		// probe for another event before opening the next chunk
		if !src.Next() {
			if err := src.Err(); err != nil && !opts.Repair {
				return report, err
			}
			break
		}
		carry = src.Event()
	}
	logInfo(fmt.Sprintf("Split %d events into %d files with base name %q",
		report.Events, len(report.Files), base), "split")
	return report, nil
}

// boundedStream yields at most limit events from src, starting with an
// optional event carried over from the previous chunk's boundary probe.
type boundedStream struct {
	src   EventStream
	limit int
	carry *lhef.Event
	n     int
	evt   *lhef.Event
	err   error
}

func (b *boundedStream) Next() bool {
	if b.n >= b.limit {
		return false
	}
	if b.carry != nil {
		b.evt, b.carry = b.carry, nil
		b.n++
		return true
	}
	if b.src.Next() {
		b.evt = b.src.Event()
		b.n++
		return true
	}
	b.err = b.src.Err()
	return false
}

func (b *boundedStream) Event() *lhef.Event {
	return b.evt
}

func (b *boundedStream) Err() error {
	return b.err
}
