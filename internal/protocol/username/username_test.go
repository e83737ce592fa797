package username

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/danmuck/rscwire/internal/testutil/testlog"
)

func TestKnownNames(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		in   string
		want string
	}{
		{"zezima", "Zezima"},
		{"cook123", "Cook123"},
		{"  ZEZIMA ", "Zezima"},
		{"mod mark", "Mod Mark"},
		{"1337 h4x", "1337 H4x"},
		{"a", "A"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Decode(Encode(tc.in)); got != tc.want {
			t.Fatalf("Decode(Encode(%q)) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeValues(t *testing.T) {
	testlog.Start(t)
	if got := Encode("a"); got != 1 {
		t.Fatalf("Encode(a) = %d", got)
	}
	if got := Encode("ba"); got != 2*37+1 {
		t.Fatalf("Encode(ba) = %d", got)
	}
	if got := Encode("0"); got != 27 {
		t.Fatalf("Encode(0) = %d", got)
	}
	if Encode("a_b") != Encode("a b") {
		t.Fatalf("unsupported characters must contribute zero")
	}
}

func TestEncodeWrapsLikeUint64(t *testing.T) {
	testlog.Start(t)
	name := strings.Repeat("9", 20)
	var want uint64
	for range name {
		want = want*37 + 36
	}
	if got := Encode(name); got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestDecodeSignBitIsInvalid(t *testing.T) {
	testlog.Start(t)
	if got := Decode(1 << 63); got != Invalid {
		t.Fatalf("got %q", got)
	}
	if got := Decode(^uint64(0)); got != Invalid {
		t.Fatalf("got %q", got)
	}
}

func TestRoundTripNormalizesName(t *testing.T) {
	testlog.Start(t)
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789 "
	rng := rand.New(rand.NewSource(37))
	for i := 0; i < 2000; i++ {
		b := make([]byte, 1+rng.Intn(12))
		for j := range b {
			b[j] = charset[rng.Intn(len(charset))]
		}
		name := string(b)
		norm := Normalize(name)
		got := Decode(Encode(name))
		if !strings.EqualFold(got, norm) {
			t.Fatalf("round trip %q: got %q want (case-insensitive) %q", name, got, norm)
		}
		if want := expectedCasing(norm); got != want {
			t.Fatalf("casing for %q: got %q want %q", name, got, want)
		}
	}
}

// expectedCasing uppercases every letter preceded only by spaces since the
// previous non-space character, or by nothing at all.
func expectedCasing(norm string) string {
	out := []byte(norm)
	for i := range out {
		if out[i] < 'a' || out[i] > 'z' {
			continue
		}
		j := i - 1
		for j >= 0 && out[j] == ' ' {
			j--
		}
		if j < 0 || j < i-1 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}
