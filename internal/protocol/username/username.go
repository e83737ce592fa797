// Package username packs player names into 64-bit base-37 integers.
//
// Digits: space (and anything unsupported) is 0, a-z are 1-26, 0-9 are 27-36.
package username

import "strings"

const (
	base = 37
	// Invalid is returned by Decode for values with the sign bit set.
	Invalid = "invalidName"
)

// Normalize trims and lowercases name the way Encode does before packing.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Encode folds the normalized name into a base-37 integer. Arithmetic wraps
// like native uint64 overflow.
func Encode(name string) uint64 {
	var v uint64
	for _, r := range Normalize(name) {
		v *= base
		switch {
		case r >= 'a' && r <= 'z':
			v += uint64(r-'a') + 1
		case r >= '0' && r <= '9':
			v += uint64(r-'0') + 27
		}
	}
	return v
}

// Decode rebuilds a name from v. A letter is uppercased when nothing but
// spaces precede it, so the first letter of the name and of each word after
// a space come back capitalized.
func Decode(v uint64) string {
	if int64(v) < 0 {
		return Invalid
	}
	var out []byte
	for v != 0 {
		digit := v % base
		v /= base
		switch {
		case digit == 0:
			out = append(out, ' ')
		case digit < 27:
			c := byte('a' + digit - 1)
			if v%base == 0 {
				c = byte('A' + digit - 1)
			}
			out = append(out, c)
		default:
			out = append(out, byte('0'+digit-27))
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
