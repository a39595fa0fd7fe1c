package lheutils

import (
	"fmt"

	"github.com/next-exp/lheutils/lhef"
)

// ExportHDF5 writes the run header and every event of the stream into the
// named HDF5 file and returns the number of events written. The low-level
// writer panics on HDF5 library errors; the panic comes back as an error
// here.
func ExportHDF5(init *lhef.Init, events EventStream, filename string) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("error writing HDF5 file %q: %v", filename, r)
		}
	}()

	writer := NewHDF5Writer(filename, init)
	for events.Next() {
		writer.WriteEvent(events.Event())
		count++
	}
	if serr := events.Err(); serr != nil {
		writer.Close()
		return count, serr
	}
	return count, writer.Close()
}
