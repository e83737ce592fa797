// Package stream recovers frame boundaries from arbitrarily fragmented reads.
package stream

import (
	"errors"
	"fmt"

	"github.com/danmuck/rscwire/internal/protocol"
	"github.com/danmuck/rscwire/internal/protocol/frame"
)

// DefaultCapacity is the historical per-connection receive allowance.
const DefaultCapacity = 5000

// Reassembler buffers bytes received on one connection until they form
// complete frames. It is owned by a single connection and is not safe for
// concurrent use.
type Reassembler struct {
	buf  []byte
	fill int
}

// New returns a reassembler with a fixed capacity. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Reassembler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Reassembler{buf: make([]byte, capacity)}
}

// Capacity returns the fixed buffer size.
func (r *Reassembler) Capacity() int {
	return len(r.buf)
}

// Buffered returns the number of received bytes not yet part of a frame.
func (r *Reassembler) Buffered() int {
	return r.fill
}

// Reset discards any buffered bytes.
func (r *Reassembler) Reset() {
	clear(r.buf[:r.fill])
	r.fill = 0
}

// Feed appends one delivery of bytes and calls emit for every frame that
// becomes complete, in arrival order. Incomplete trailing bytes are kept for
// the next call. The returned error is fatal for the connection:
// protocol.ErrFrameOverflow when the buffer fills without yielding a frame,
// protocol.ErrEmptyFrame when a header declares zero length.
func (r *Reassembler) Feed(chunk []byte, emit func(frame.Frame)) error {
	for {
		n := copy(r.buf[r.fill:], chunk)
		r.fill += n
		chunk = chunk[n:]

		if err := r.drain(emit); err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}
		if r.fill == len(r.buf) {
			return fmt.Errorf("%w: %d bytes buffered without a complete frame", protocol.ErrFrameOverflow, r.fill)
		}
	}
}

func (r *Reassembler) drain(emit func(frame.Frame)) error {
	for r.fill > 0 {
		fr, consumed, err := frame.Decode(r.buf[:r.fill])
		if errors.Is(err, frame.ErrIncomplete) {
			return nil
		}
		if err != nil {
			return err
		}
		r.shift(consumed)
		emit(fr)
	}
	return nil
}

// shift moves unconsumed bytes to the head and zeroes the vacated tail.
func (r *Reassembler) shift(consumed int) {
	left := copy(r.buf, r.buf[consumed:r.fill])
	clear(r.buf[left:r.fill])
	r.fill = left
}
