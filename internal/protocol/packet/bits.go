package packet

import "fmt"

var bitmasks = func() [33]uint32 {
	var m [33]uint32
	for i := 0; i < 32; i++ {
		m[i] = 1<<i - 1
	}
	m[32] = ^uint32(0)
	return m
}()

// PutBits packs the low n bits of value MSB-first starting at the bit
// cursor. Bits already written around the field are preserved. Afterwards
// the byte cursor sits one past the last byte touched.
//
// n must be in [1, 32]; other widths panic.
func (p *Packet) PutBits(value uint32, n int) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("packet: invalid bit width %d", n))
	}
	index := p.bitOffset >> 3
	window := 8 - (p.bitOffset & 7)
	p.bitOffset += n
	p.ensure((p.bitOffset + 7) >> 3)

	for ; n > window; window = 8 {
		p.buf[index] &^= byte(bitmasks[window])
		p.buf[index] |= byte((value >> (n - window)) & bitmasks[window])
		index++
		n -= window
	}

	if n == window {
		p.buf[index] &^= byte(bitmasks[window])
		p.buf[index] |= byte(value & bitmasks[window])
	} else {
		shift := window - n
		p.buf[index] &^= byte(bitmasks[n] << shift)
		p.buf[index] |= byte((value & bitmasks[n]) << shift)
	}

	p.offset = index + 1
}

// GetBits reads n bits MSB-first from the bit cursor, mirroring PutBits.
func (p *Packet) GetBits(n int) (uint32, error) {
	if n < 1 || n > 32 {
		return 0, fmt.Errorf("packet: invalid bit width %d", n)
	}
	end := (p.bitOffset + n + 7) >> 3
	if end > len(p.buf) {
		return 0, &RangeError{Offset: end, Length: len(p.buf)}
	}

	var v uint32
	for n > 0 {
		index := p.bitOffset >> 3
		avail := 8 - (p.bitOffset & 7)
		take := min(avail, n)
		chunk := (uint32(p.buf[index]) >> (avail - take)) & bitmasks[take]
		v = v<<take | chunk
		p.bitOffset += take
		n -= take
	}
	p.offset = (p.bitOffset + 7) >> 3
	return v, nil
}
