package statica

import "errors"

var (
	// ErrNotFound is returned when a resource cannot be looked up
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedRange is returned when a Range header does not match bytes=<start>-<end>
	ErrMalformedRange = errors.New("malformed range")
	// ErrUnsatisfiableRange is returned when a range cannot be served from the resource
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)
