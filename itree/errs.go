package itree

import (
	"errors"
	"fmt"
)

var (
	ErrOwnership  = errors.New("ownership violation")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
	ErrCycle      = errors.New("circular link")
	ErrLink       = errors.New("invalid link")
	ErrRecord     = errors.New("invalid record")

	// ErrReadOnly is returned when a protection flag blocks a mutation.
	ErrReadOnly = fmt.Errorf("%w: read-only", ErrOwnership)

	ErrIndex     = fmt.Errorf("%w: index out of range", ErrNotFound)
	ErrAmbiguous = fmt.Errorf("%w: ambiguous match", ErrNotFound)
	ErrDetached  = fmt.Errorf("%w: node has no parent", ErrNotFound)
)
