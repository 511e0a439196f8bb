package contract

import "errors"

var (
	// ErrStaleWrite means a guarded update matched no row: the record changed
	// state, or vanished, after it was read.
	ErrStaleWrite = errors.New("record changed since it was read")
	// ErrDuplicate wraps a unique constraint violation
	ErrDuplicate = errors.New("duplicate record")
)
