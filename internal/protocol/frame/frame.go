// Package frame encodes and decodes the two historical frame header shapes.
//
// Short form, content length c = 1 + len(body) below 160:
//
//	[c][body[last]][opcode][body[0..last-1]]
//
// Extended form, c of 160 or more:
//
//	[160 + c/256][c & 0xff][opcode][body...]
package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/rscwire/internal/protocol"
)

const (
	// ExtendedMarker is the smallest first header byte of an extended frame.
	ExtendedMarker = 160
	// MaxContentLen is the largest opcode+body length an extended header can declare.
	MaxContentLen = (0xff-ExtendedMarker)*256 + 0xff
	// MaxBodyLen is the largest body Encode accepts.
	MaxBodyLen = MaxContentLen - 1
)

var (
	ErrIncomplete   = errors.New("frame: incomplete frame")
	ErrBodyTooLarge = errors.New("frame: body too large")
)

// Frame is one decoded wire unit.
type Frame struct {
	Opcode uint8
	Body   []byte
}

// WireLen returns the number of bytes f occupies once encoded.
func (f Frame) WireLen() int {
	c := len(f.Body) + 1
	if c >= ExtendedMarker {
		return 2 + c
	}
	return 1 + c
}

// Encode returns the wire form of f.
func Encode(f Frame) ([]byte, error) {
	n := len(f.Body)
	c := n + 1
	if c > MaxContentLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, n)
	}

	if c >= ExtendedMarker {
		out := make([]byte, 0, 3+n)
		out = append(out, byte(ExtendedMarker+c/256), byte(c), f.Opcode)
		return append(out, f.Body...), nil
	}

	if n == 0 {
		return []byte{1, f.Opcode}, nil
	}
	out := make([]byte, 0, 2+n)
	out = append(out, byte(c), f.Body[n-1], f.Opcode)
	return append(out, f.Body[:n-1]...), nil
}

// Header inspects the head of buf and returns the header size and the
// declared content length. It needs a second byte only once the first one
// turns out to be an extended marker.
func Header(buf []byte) (headerLen, contentLen int, err error) {
	if len(buf) < 1 {
		return 0, 0, ErrIncomplete
	}
	c := int(buf[0])
	if c < ExtendedMarker {
		headerLen = 1
	} else {
		if len(buf) < 2 {
			return 0, 0, ErrIncomplete
		}
		c = (c-ExtendedMarker)*256 + int(buf[1])
		headerLen = 2
	}
	if c == 0 {
		return 0, 0, protocol.ErrEmptyFrame
	}
	return headerLen, c, nil
}

// Decode extracts one frame from the head of buf and reports how many bytes
// it consumed. It returns ErrIncomplete, without consuming, until the whole
// frame is present.
func Decode(buf []byte) (Frame, int, error) {
	headerLen, c, err := Header(buf)
	if err != nil {
		return Frame{}, 0, err
	}
	if len(buf)-headerLen < c {
		return Frame{}, 0, ErrIncomplete
	}
	return fromContent(buf[headerLen : headerLen+c]), headerLen + c, nil
}

// fromContent undoes the short-form rotation, which moved the final body
// byte ahead of the opcode.
func fromContent(content []byte) Frame {
	c := len(content)
	if c >= ExtendedMarker {
		body := make([]byte, c-1)
		copy(body, content[1:])
		return Frame{Opcode: content[0], Body: body}
	}
	if c == 1 {
		return Frame{Opcode: content[0], Body: []byte{}}
	}
	body := make([]byte, c-1)
	copy(body, content[2:])
	body[c-2] = content[0]
	return Frame{Opcode: content[1], Body: body}
}

// ReadFrame reads exactly one frame from a blocking stream.
func ReadFrame(r io.Reader) (Frame, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:1]); err != nil {
		return Frame{}, err
	}
	n := 1
	if head[0] >= ExtendedMarker {
		if _, err := io.ReadFull(r, head[1:2]); err != nil {
			return Frame{}, err
		}
		n = 2
	}
	_, c, err := Header(head[:n])
	if err != nil {
		return Frame{}, err
	}
	content := make([]byte, c)
	if _, err := io.ReadFull(r, content); err != nil {
		return Frame{}, err
	}
	return fromContent(content), nil
}

// WriteFrame encodes f and writes it in one call.
func WriteFrame(w io.Writer, f Frame) error {
	b, err := Encode(f)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
