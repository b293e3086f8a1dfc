package hyperfold

import "errors"

// Errors
var (
	ErrStructure              = errors.New("malformed structure notation")
	ErrIncompatibleComparison = errors.New("snapshots describe different node counts")
	ErrMissingSnapshot        = errors.New("no snapshot for temperature")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrConflictingSnapshot    = errors.New("temperature already holds a different snapshot")
	ErrNilSnapshot            = errors.New("nil snapshot")
	ErrFold                   = errors.New("fold failed")
	ErrClosed                 = errors.New("closed")
)
