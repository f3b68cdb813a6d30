package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned when an object or container does not exist.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrPermission is returned when the backend denies access.
	// Re-exported from io/fs for convenience.
	ErrPermission = fs.ErrPermission

	// ErrUnsupported is returned when an operation is not supported by the
	// backend, such as signed URLs without a configured key.
	ErrUnsupported = errors.New("operation not supported")
)
