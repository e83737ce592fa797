package messages

import (
	"strings"

	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
)

const credentialWidth = 20

// encoder adapts a typed encode function to schema.EncodeFunc. Both T and
// *T bodies are accepted.
func encoder[T any](msgType string, fn func(p *packet.Packet, body T) error) schema.EncodeFunc {
	return func(p *packet.Packet, body any) error {
		switch v := body.(type) {
		case T:
			return fn(p, v)
		case *T:
			if v != nil {
				return fn(p, *v)
			}
		}
		var zero T
		return schema.Invalid(msgType, "", "want %T body, got %T", zero, body)
	}
}

func decodeEmpty(*packet.Packet) (any, error) { return nil, nil }

func encodeEmpty(*packet.Packet, any) error { return nil }

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func getBool(p *packet.Packet) (bool, error) {
	b, err := p.GetByte()
	return b != 0, err
}

// putFixedString writes s space-padded to width bytes.
func putFixedString(p *packet.Packet, msgType, field, s string, width int) error {
	n := len([]rune(s))
	if n > width {
		return schema.Invalid(msgType, field, "length %d exceeds %d", n, width)
	}
	p.PutString(s + strings.Repeat(" ", width-n))
	return nil
}

func getFixedString(p *packet.Packet, width int) (string, error) {
	s, err := p.GetString(width)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// putLengthCount writes a one-byte element count.
func putLengthCount(p *packet.Packet, msgType, field string, n int) error {
	if n > 0xff {
		return schema.Invalid(msgType, field, "%d entries exceeds 255", n)
	}
	p.PutByte(uint8(n))
	return nil
}
