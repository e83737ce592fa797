package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/rscwire/internal/server"
)

type fileConfig struct {
	ListenAddr      string        `toml:"listen_addr"`
	HTTPAddr        string        `toml:"http_addr"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	MetricsToken    string        `toml:"metrics_token"`
	TLSCertFile     string        `toml:"tls_cert_file"`
	TLSKeyFile      string        `toml:"tls_key_file"`
	ShutdownTimeout string        `toml:"shutdown_timeout"`
	World           worldConfig   `toml:"world"`
	Session         sessionConfig `toml:"session"`
	AcceptBackoff   backoffConfig `toml:"accept_backoff"`
}

type worldConfig struct {
	Index           uint16 `toml:"index"`
	PlaneWidth      uint16 `toml:"plane_width"`
	PlaneHeight     uint16 `toml:"plane_height"`
	PlaneIndex      uint16 `toml:"plane_index"`
	PlaneMultiplier uint16 `toml:"plane_multiplier"`
}

type sessionConfig struct {
	BufferSize    int    `toml:"buffer_size"`
	OutboxSize    int    `toml:"outbox_size"`
	ReadChunkSize int    `toml:"read_chunk_size"`
	ReadTimeout   string `toml:"read_timeout"`
	WriteTimeout  string `toml:"write_timeout"`
}

type backoffConfig struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

func loadServerConfig(path string) (server.Config, error) {
	cfg := server.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.Config{}, fmt.Errorf("load rscd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return server.Config{}, fmt.Errorf("load rscd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("metrics_token") {
		cfg.MetricsToken = strings.TrimSpace(raw.MetricsToken)
	}
	if meta.IsDefined("tls_cert_file") {
		cfg.TLSCertFile = strings.TrimSpace(raw.TLSCertFile)
	}
	if meta.IsDefined("tls_key_file") {
		cfg.TLSKeyFile = strings.TrimSpace(raw.TLSKeyFile)
	}
	if meta.IsDefined("allowed_origins") {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	durations := []struct {
		key []string
		raw string
		dst *time.Duration
	}{
		{[]string{"shutdown_timeout"}, raw.ShutdownTimeout, &cfg.ShutdownTimeout},
		{[]string{"session", "read_timeout"}, raw.Session.ReadTimeout, &cfg.Session.ReadTimeout},
		{[]string{"session", "write_timeout"}, raw.Session.WriteTimeout, &cfg.Session.WriteTimeout},
		{[]string{"accept_backoff", "initial_delay"}, raw.AcceptBackoff.InitialDelay, &cfg.AcceptBackoff.InitialDelay},
		{[]string{"accept_backoff", "max_delay"}, raw.AcceptBackoff.MaxDelay, &cfg.AcceptBackoff.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return server.Config{}, fmt.Errorf("parse %s: %w", strings.Join(d.key, "."), err)
		}
		*d.dst = v
	}

	if meta.IsDefined("world", "index") {
		cfg.World.Index = raw.World.Index
	}
	if meta.IsDefined("world", "plane_width") {
		cfg.World.PlaneWidth = raw.World.PlaneWidth
	}
	if meta.IsDefined("world", "plane_height") {
		cfg.World.PlaneHeight = raw.World.PlaneHeight
	}
	if meta.IsDefined("world", "plane_index") {
		cfg.World.PlaneIndex = raw.World.PlaneIndex
	}
	if meta.IsDefined("world", "plane_multiplier") {
		cfg.World.PlaneMultiplier = raw.World.PlaneMultiplier
	}

	if meta.IsDefined("session", "buffer_size") {
		cfg.Session.BufferSize = raw.Session.BufferSize
	}
	if meta.IsDefined("session", "outbox_size") {
		cfg.Session.OutboxSize = raw.Session.OutboxSize
	}
	if meta.IsDefined("session", "read_chunk_size") {
		cfg.Session.ReadChunkSize = raw.Session.ReadChunkSize
	}

	if meta.IsDefined("accept_backoff", "multiplier") {
		cfg.AcceptBackoff.Multiplier = raw.AcceptBackoff.Multiplier
	}
	if meta.IsDefined("accept_backoff", "jitter") {
		cfg.AcceptBackoff.Jitter = raw.AcceptBackoff.Jitter
	}

	if err := cfg.Session.Validate(); err != nil {
		return server.Config{}, fmt.Errorf("load rscd config: %w", err)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimRight(strings.TrimSpace(origin), "/")
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
