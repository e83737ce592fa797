package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/rscwire/internal/protocol"
)

var (
	ErrOutboxFull = errors.New("session: outbox full")
	ErrClosed     = errors.New("session: closed")
)

// DispatchError is a per-message failure. Type is empty when the opcode
// never resolved to a name.
type DispatchError struct {
	Opcode uint8
	Type   string
	Err    error
}

func (e *DispatchError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("session: opcode %d: %v", e.Opcode, e.Err)
	}
	return fmt.Sprintf("session: %s (opcode %d): %v", e.Type, e.Opcode, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// errorKind is the metrics label for err.
func errorKind(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownOpcode):
		return "unknown_opcode"
	case errors.Is(err, protocol.ErrMissingHandler):
		return "missing_handler"
	case errors.Is(err, protocol.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, protocol.ErrFieldValidation):
		return "field_validation"
	case errors.Is(err, protocol.ErrFrameOverflow):
		return "overflow"
	case errors.Is(err, protocol.ErrEmptyFrame):
		return "empty_frame"
	case errors.Is(err, ErrOutboxFull):
		return "outbox_full"
	default:
		return "other"
	}
}
