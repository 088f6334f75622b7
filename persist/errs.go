package persist

import "errors"

var (
	// ErrCorrupt is returned when the stored digest does not match the body.
	ErrCorrupt = errors.New("corrupt data")
	// ErrBadFormat is returned for streams which are not itree streams or
	// whose body cannot be decoded.
	ErrBadFormat = errors.New("bad format")
	ErrVersion   = errors.New("unsupported version")
	ErrExists    = errors.New("file exists")
)
