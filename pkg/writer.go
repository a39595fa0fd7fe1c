package lheutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/next-exp/lheutils/lhef"
)

// WriteOptions control how an LHE output is produced.
type WriteOptions struct {
	// Compress gzips the output. Writing to a file whose name ends in .gz or
	// .gzip compresses regardless.
	Compress bool
	// Mode selects the per-event weight serialization.
	Mode lhef.WeightMode
	// Repair downgrades a source decode failure to a clean stop: the output
	// is closed properly after the last good event instead of failing.
	Repair bool
	// FileMode, when non-zero, is applied to a newly written file. WriteFile
	// otherwise keeps the mode of the file it replaces.
	FileMode os.FileMode
}

// WriteResult reports what a write produced.
type WriteResult struct {
	Filename  string
	Events    int
	Truncated bool  // Repair stopped early
	Cause     error // the decode failure Repair swallowed
}

// Write streams init and events to w as an LHE document. With Repair set, a
// failing source ends the document cleanly after the last decodable event
// and the failure is reported in the result instead of the error.
func Write(w io.Writer, init *lhef.Init, events EventStream, opts WriteOptions) (*WriteResult, error) {
	out := w
	var gz *gzip.Writer
	if opts.Compress {
		gz = gzip.NewWriter(w)
		out = gz
	}

	enc := lhef.NewEncoder(out)
	enc.SetWeightMode(opts.Mode)
	if err := enc.WriteInit(init); err != nil {
		return nil, err
	}

	res := &WriteResult{}
	for events.Next() {
		if err := enc.WriteEvent(events.Event()); err != nil {
			return nil, err
		}
		res.Events++
	}
	if err := events.Err(); err != nil {
		if !opts.Repair {
			return nil, err
		}
		res.Truncated = true
		res.Cause = err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// WriteFile writes an LHE file through a temporary file in the destination
// directory and renames it into place, so the destination is never observed
// half-written and is untouched if anything fails.
func WriteFile(name string, init *lhef.Init, events EventStream, opts WriteOptions) (*WriteResult, error) {
	if hasGzSuffix(name) {
		opts.Compress = true
	}

	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, filepath.Base(name)+"_*.tmp")
	if err != nil {
		return nil, &ErrWriteFile{Filename: name, Err: err}
	}

	// temp files are born 0600; give new outputs a regular file mode
	mode := opts.FileMode
	if mode == 0 {
		mode = 0o644
		if st, err := os.Stat(name); err == nil {
			mode = st.Mode()
		}
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, &ErrWriteFile{Filename: name, Err: err}
	}

	res, err := Write(tmp, init, events, opts)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, &ErrWriteFile{Filename: name, Err: err}
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return nil, &ErrWriteFile{Filename: name, Err: err}
	}

	res.Filename = name
	logInfo(fmt.Sprintf("Wrote %d events to %s", res.Events, name), "writer")
	return res, nil
}

// WriteOutput writes to the named file, or to stdout when name is empty or
// "-". Compression needs a real file; requesting it on stdout is refused
// before anything is written.
func WriteOutput(name string, init *lhef.Init, events EventStream, opts WriteOptions) (*WriteResult, error) {
	if name == "" || name == "-" {
		if opts.Compress {
			return nil, &ErrIncompatibleOptions{
				Reason: "compression requires an output file, pipe through gzip instead",
			}
		}
		return Write(os.Stdout, init, events, opts)
	}
	return WriteFile(name, init, events, opts)
}

func hasGzSuffix(name string) bool {
	return strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".gzip")
}
