package lheutils

import (
	"os"

	"github.com/next-exp/lheutils/lhef"
)

// OpenInput opens the named LHE source. An empty name or "-" reads from
// stdin; Close is then a no-op on the descriptor.
func OpenInput(name string) (*lhef.Reader, error) {
	if name == "" || name == "-" {
		return lhef.NewReader(os.Stdin)
	}
	r, err := lhef.Open(name)
	if err != nil {
		return nil, &ErrOpenFile{Filename: name, Err: err}
	}
	return r, nil
}
