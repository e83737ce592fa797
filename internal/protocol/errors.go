package protocol

import "errors"

// Connection-fatal errors.
var (
	ErrFrameOverflow = errors.New("protocol: reassembly buffer overflow")
	ErrEmptyFrame    = errors.New("protocol: frame declares zero length")
)

// Per-message errors. A connection stays open after any of these.
var (
	ErrUnknownOpcode   = errors.New("protocol: unknown opcode")
	ErrMissingHandler  = errors.New("protocol: no handler registered")
	ErrOutOfRange      = errors.New("protocol: out of packet range")
	ErrFieldValidation = errors.New("protocol: field validation failed")
)

// IsFatal reports whether err must close the connection it occurred on.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFrameOverflow) || errors.Is(err, ErrEmptyFrame)
}
