package task

import "fmt"

// StorageReadError reports that the storage provider failed to read the
// task blob. A missing key is not an error.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// ParseError reports a stored blob that cannot be decoded into a Collection.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports that the storage provider failed to write the
// task blob.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a mutation addressed at an id that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}
