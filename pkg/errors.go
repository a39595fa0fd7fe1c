package lheutils

import "fmt"

// ErrOpenFile represents an error when opening a source file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrWriteFile represents an error when writing an output file.
type ErrWriteFile struct {
	Filename string
	Err      error
}

func (e *ErrWriteFile) Error() string {
	return fmt.Sprintf("error writing file %q: %v", e.Filename, e.Err)
}

func (e *ErrWriteFile) Unwrap() error {
	return e.Err
}

// ErrDuplicateWeight represents an error when registering a weight id that is
// already defined in any group.
type ErrDuplicateWeight struct {
	ID    string
	Group string
}

func (e *ErrDuplicateWeight) Error() string {
	return fmt.Sprintf("weight id %q already exists in group %q", e.ID, e.Group)
}

// ErrWeightNotFound represents an error when a weight id is missing from the
// init weight groups.
type ErrWeightNotFound struct {
	ID string
}

func (e *ErrWeightNotFound) Error() string {
	return fmt.Sprintf("weight id %q not found in init weight groups", e.ID)
}

// ErrIncompatibleHeaders represents an error when merging files whose init
// blocks differ.
type ErrIncompatibleHeaders struct {
	File string
}

func (e *ErrIncompatibleHeaders) Error() string {
	return fmt.Sprintf("init block of %q differs from the first input file", e.File)
}

// ErrInvalidChunkSize represents an error when splitting with a non-positive
// events-per-file count.
type ErrInvalidChunkSize struct {
	Size int
}

func (e *ErrInvalidChunkSize) Error() string {
	return fmt.Sprintf("invalid events per file: %d, must be positive", e.Size)
}

// ErrIncompatibleOptions represents an error when output options conflict.
// It is reported before any output is produced.
type ErrIncompatibleOptions struct {
	Reason string
}

func (e *ErrIncompatibleOptions) Error() string {
	return e.Reason
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

// ErrCreateGroup represents an error when creating an HDF5 group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}
