// Package chat implements the 4-bit alphabet compression used for public
// and private chat text.
package chat

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLength is the number of characters kept by Encode.
	MaxLength = 80
	// maxDecoded bounds the characters Decode will reconstruct.
	maxDecoded = 100
	// nibbleLimit is the number of symbols reachable with one nibble.
	nibbleLimit = 13
	escapeBias  = 195
	// Placeholder is the text substituted for undecodable messages.
	Placeholder = "."
)

var ErrMalformed = errors.New("chat: malformed message")

// alphabet is ordered by frequency; the first nibbleLimit entries fit in a
// single nibble.
var alphabet = [...]rune{
	' ', 'e', 't', 'a', 'o', 'i', 'h', 'n', 's', 'r', 'd', 'l', 'u',
	'm', 'w', 'c', 'y', 'f', 'g', 'p', 'b', 'v', 'k', 'x', 'j', 'q', 'z',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	' ', '!', '?', '.', ',', ':', ';', '(', ')', '-', '&', '*', '\\', '\'',
	'@', '#', '+', '=', '£', '$', '%', '"', '[', ']',
}

var symbolIndex = func() map[rune]int {
	m := make(map[rune]int, len(alphabet))
	for i := len(alphabet) - 1; i >= 0; i-- {
		m[alphabet[i]] = i
	}
	return m
}()

// Encode compresses s. Input is truncated to MaxLength characters and
// lowercased; characters outside the alphabet become spaces.
func Encode(s string) []byte {
	if utf8.RuneCountInString(s) > MaxLength {
		s = string([]rune(s)[:MaxLength])
	}
	s = strings.ToLower(s)

	out := make([]byte, 0, len(s))
	carry := -1
	for _, r := range s {
		index := symbolIndex[r]
		if index >= nibbleLimit {
			index += escapeBias
		}

		switch {
		case carry == -1 && index < nibbleLimit:
			carry = index
		case carry == -1:
			out = append(out, byte(index))
		case index < nibbleLimit:
			out = append(out, byte(carry<<4+index))
			carry = -1
		default:
			out = append(out, byte(carry<<4+index>>4))
			carry = index & 0xf
		}
	}
	if carry != -1 {
		out = append(out, byte(carry<<4))
	}
	return out
}

// Decode expands an encoded message and restores sentence capitalization.
func Decode(encoded []byte) (string, error) {
	decoded := make([]rune, 0, 2*len(encoded))
	escape := -1

	for _, b := range encoded {
		for _, nibble := range [2]int{int(b >> 4), int(b & 0xf)} {
			if escape == -1 {
				if nibble < nibbleLimit {
					decoded = append(decoded, alphabet[nibble])
				} else {
					escape = nibble
				}
				continue
			}
			index := escape<<4 + nibble - escapeBias
			if index < 0 || index >= len(alphabet) {
				return "", ErrMalformed
			}
			decoded = append(decoded, alphabet[index])
			escape = -1
		}
		if len(decoded) > maxDecoded {
			return "", ErrMalformed
		}
	}
	if escape != -1 {
		return "", ErrMalformed
	}

	normalize(decoded)
	return strings.TrimSpace(string(decoded)), nil
}

// DecodeOrPlaceholder returns Placeholder instead of an error.
func DecodeOrPlaceholder(encoded []byte) string {
	s, err := Decode(encoded)
	if err != nil {
		return Placeholder
	}
	return s
}

// normalize capitalizes the first letter of each sentence and blanks the
// reserved '%' and late '@' symbols.
func normalize(text []rune) {
	capitalize := true
	for i, r := range text {
		if i > 4 && r == '@' {
			text[i] = ' '
		}
		if r == '%' {
			text[i] = ' '
		}
		if capitalize && r >= 'a' && r <= 'z' {
			text[i] = r - 'a' + 'A'
			capitalize = false
		}
		if r == '.' || r == '!' {
			capitalize = true
		}
	}
}
