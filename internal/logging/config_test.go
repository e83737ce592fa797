package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"diagnostics", zerolog.TraceLevel, true},
		{"off", zerolog.Disabled, true},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestApplyWritesStructuredFields(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Apply(Config{Level: zerolog.DebugLevel, NoColor: true, Out: &buf})
	log.Debug().Str("remote", "127.0.0.1:1").Msg("session opened")

	out := buf.String()
	if !strings.Contains(out, "session opened") || !strings.Contains(out, "remote=127.0.0.1:1") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestApplyBypassDropsOutput(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	Apply(Config{Level: zerolog.DebugLevel, Bypass: true})
	log.Error().Msg("dropped")
}
