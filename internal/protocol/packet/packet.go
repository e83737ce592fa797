// Package packet implements the cursor used to read and build frame bodies.
//
// A Packet tracks two independent positions over one byte buffer: a byte
// offset used by the fixed-width readers and writers, and a bit offset used
// by PutBits/GetBits. All multi-byte integers are big-endian.
package packet

import (
	"fmt"

	"github.com/danmuck/rscwire/internal/protocol"
)

const defaultCapacity = 64

// RangeError reports a read past the end of the packet.
type RangeError struct {
	Offset int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("packet: out of packet range (%d of %d)", e.Offset, e.Length)
}

func (e *RangeError) Is(target error) bool {
	return target == protocol.ErrOutOfRange
}

// Packet is a read/write cursor over one frame body. It is not safe for
// concurrent use; each encode or decode call owns its own Packet.
type Packet struct {
	buf       []byte
	offset    int
	bitOffset int
}

// New returns an empty, growable packet for encoding.
func New() *Packet {
	return &Packet{buf: make([]byte, 0, defaultCapacity)}
}

// Wrap returns a packet reading from b. The packet borrows b until a write
// needs to grow it.
func Wrap(b []byte) *Packet {
	return &Packet{buf: b}
}

// Bytes returns the encoded body, bounded by the byte offset.
func (p *Packet) Bytes() []byte {
	return p.buf[:p.offset]
}

// Len returns the size of the underlying buffer.
func (p *Packet) Len() int {
	return len(p.buf)
}

// Offset returns the byte cursor.
func (p *Packet) Offset() int {
	return p.offset
}

// BitOffset returns the bit cursor.
func (p *Packet) BitOffset() int {
	return p.bitOffset
}

// Remaining returns the number of unread bytes after the byte cursor.
func (p *Packet) Remaining() int {
	if p.offset >= len(p.buf) {
		return 0
	}
	return len(p.buf) - p.offset
}

// Rewind moves the byte cursor back by n bytes. It exists for decoders that
// over-read while probing for a terminator.
func (p *Packet) Rewind(n int) error {
	if n < 0 || n > p.offset {
		return &RangeError{Offset: p.offset - n, Length: len(p.buf)}
	}
	p.offset -= n
	return nil
}

// Reset clears the buffer and both cursors so the packet can be reused.
func (p *Packet) Reset() {
	clear(p.buf[:cap(p.buf)])
	p.buf = p.buf[:0]
	p.offset = 0
	p.bitOffset = 0
}

func (p *Packet) ensure(end int) {
	if end <= len(p.buf) {
		return
	}
	if end <= cap(p.buf) {
		p.buf = p.buf[:end]
		return
	}
	size := max(2*cap(p.buf), end, defaultCapacity)
	grown := make([]byte, end, size)
	copy(grown, p.buf)
	p.buf = grown
}

func (p *Packet) need(n int) error {
	if n < 0 || p.offset+n > len(p.buf) {
		return &RangeError{Offset: p.offset + n, Length: len(p.buf)}
	}
	return nil
}

func (p *Packet) PutByte(v uint8) {
	p.ensure(p.offset + 1)
	p.buf[p.offset] = v
	p.offset++
}

func (p *Packet) PutBytes(b []byte) {
	p.ensure(p.offset + len(b))
	p.offset += copy(p.buf[p.offset:], b)
}

// PutString writes one byte per character, keeping only the low 8 bits.
func (p *Packet) PutString(s string) {
	for _, r := range s {
		p.PutByte(byte(r))
	}
}

func (p *Packet) PutShort(v uint16) {
	p.ensure(p.offset + 2)
	p.buf[p.offset] = byte(v >> 8)
	p.buf[p.offset+1] = byte(v)
	p.offset += 2
}

func (p *Packet) PutInt(v uint32) {
	p.ensure(p.offset + 4)
	p.buf[p.offset] = byte(v >> 24)
	p.buf[p.offset+1] = byte(v >> 16)
	p.buf[p.offset+2] = byte(v >> 8)
	p.buf[p.offset+3] = byte(v)
	p.offset += 4
}

func (p *Packet) PutLong(v uint64) {
	p.PutInt(uint32(v >> 32))
	p.PutInt(uint32(v))
}

// PutStackInt writes v as one byte when it is below 128, otherwise as four
// bytes with 128 added to the top byte.
func (p *Packet) PutStackInt(v uint32) {
	if v < 128 {
		p.PutByte(byte(v))
		return
	}
	p.ensure(p.offset + 4)
	p.buf[p.offset] = byte(v>>24) + 128
	p.buf[p.offset+1] = byte(v >> 16)
	p.buf[p.offset+2] = byte(v >> 8)
	p.buf[p.offset+3] = byte(v)
	p.offset += 4
}

func (p *Packet) GetByte() (uint8, error) {
	if err := p.need(1); err != nil {
		return 0, err
	}
	v := p.buf[p.offset]
	p.offset++
	return v, nil
}

// GetBytes reads exactly n bytes. The result is a copy.
func (p *Packet) GetBytes(n int) ([]byte, error) {
	if err := p.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p.buf[p.offset:p.offset+n])
	p.offset += n
	return out, nil
}

// GetRemaining reads every byte after the cursor.
func (p *Packet) GetRemaining() []byte {
	out, _ := p.GetBytes(p.Remaining())
	return out
}

// GetString reads n bytes as 7-bit ASCII.
func (p *Packet) GetString(n int) (string, error) {
	b, err := p.GetBytes(n)
	if err != nil {
		return "", err
	}
	for i := range b {
		b[i] &= 0x7f
	}
	return string(b), nil
}

func (p *Packet) GetShort() (uint16, error) {
	if err := p.need(2); err != nil {
		return 0, err
	}
	v := uint16(p.buf[p.offset])<<8 | uint16(p.buf[p.offset+1])
	p.offset += 2
	return v, nil
}

func (p *Packet) GetInt() (uint32, error) {
	if err := p.need(4); err != nil {
		return 0, err
	}
	b := p.buf[p.offset : p.offset+4]
	p.offset += 4
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (p *Packet) GetLong() (uint64, error) {
	hi, err := p.GetInt()
	if err != nil {
		return 0, err
	}
	lo, err := p.GetInt()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

func (p *Packet) GetStackInt() (uint32, error) {
	if err := p.need(1); err != nil {
		return 0, err
	}
	if p.buf[p.offset] < 128 {
		v := p.buf[p.offset]
		p.offset++
		return uint32(v), nil
	}
	v, err := p.GetInt()
	if err != nil {
		return 0, err
	}
	return v - 128<<24, nil
}
