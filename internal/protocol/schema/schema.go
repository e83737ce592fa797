// Package schema defines the contract between the dispatch layer and a
// message catalogue: opcode tables, per-message codecs, and the
// field-validation error decoders report.
package schema

import (
	"fmt"
	"sort"

	"github.com/danmuck/rscwire/internal/protocol"
	"github.com/danmuck/rscwire/internal/protocol/packet"
)

// Message is a decoded body tagged with its symbolic type name.
type Message struct {
	Type string
	Body any
}

// DecodeFunc reads one message body from a cursor positioned at the start of
// the frame payload.
type DecodeFunc func(p *packet.Packet) (any, error)

// EncodeFunc writes body into p. Implementations return a *ValidationError
// when body is not the type they expect.
type EncodeFunc func(p *packet.Packet, body any) error

// Table maps symbolic message names to opcodes in both directions.
type Table struct {
	byName   map[string]uint8
	byOpcode map[uint8]string
}

// NewTable builds a table from name -> opcode pairs. Duplicate opcodes are a
// programming error and panic.
func NewTable(entries map[string]uint8) Table {
	t := Table{
		byName:   make(map[string]uint8, len(entries)),
		byOpcode: make(map[uint8]string, len(entries)),
	}
	for name, op := range entries {
		if prev, ok := t.byOpcode[op]; ok {
			panic(fmt.Sprintf("schema: opcode %d assigned to %q and %q", op, prev, name))
		}
		t.byName[name] = op
		t.byOpcode[op] = name
	}
	return t
}

func (t Table) Opcode(name string) (uint8, bool) {
	op, ok := t.byName[name]
	return op, ok
}

func (t Table) Name(opcode uint8) (string, bool) {
	name, ok := t.byOpcode[opcode]
	return name, ok
}

func (t Table) Len() int { return len(t.byName) }

// Names returns every registered name in sorted order.
func (t Table) Names() []string {
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Registry is everything one side of a connection needs to dispatch frames:
// the opcode table it receives on, the one it sends on, and codecs keyed by
// message name.
type Registry struct {
	Inbound  Table
	Outbound Table
	Decoders map[string]DecodeFunc
	Encoders map[string]EncodeFunc
}

// Check reports names that have a table entry but no codec. A registry may
// legitimately leave some inbound names without decoders; callers decide
// whether that is acceptable.
func (r *Registry) Check() (missingDecoders, missingEncoders []string) {
	for _, name := range r.Inbound.Names() {
		if _, ok := r.Decoders[name]; !ok {
			missingDecoders = append(missingDecoders, name)
		}
	}
	for _, name := range r.Outbound.Names() {
		if _, ok := r.Encoders[name]; !ok {
			missingEncoders = append(missingEncoders, name)
		}
	}
	return missingDecoders, missingEncoders
}

// ValidationError reports a decoded or encoded field outside its permitted
// domain.
type ValidationError struct {
	Type   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: %s field=%s: %s", e.Type, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == protocol.ErrFieldValidation
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(msgType, field, format string, args ...any) error {
	return &ValidationError{Type: msgType, Field: field, Reason: fmt.Sprintf(format, args...)}
}
