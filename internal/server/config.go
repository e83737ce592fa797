package server

import (
	"strings"
	"time"

	"github.com/danmuck/rscwire/internal/messages"
	"github.com/danmuck/rscwire/internal/protocol/session"
)

const Version = "0.1.0"

type Config struct {
	// ListenAddr is the TCP game port. Empty disables the stream listener.
	ListenAddr string
	// HTTPAddr serves /ws, /healthz and /metrics. Empty disables it.
	HTTPAddr string
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string
	// TLSCertFile and TLSKeyFile switch the HTTP listener to HTTPS and wss.
	TLSCertFile string
	TLSKeyFile  string
	// MetricsToken, when set, must be presented as a bearer token on /metrics.
	MetricsToken    string
	ShutdownTimeout time.Duration
	AcceptBackoff   BackoffConfig
	World           messages.WorldInfo
	Session         session.Config
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":43594",
		HTTPAddr:        ":43595",
		ShutdownTimeout: 5 * time.Second,
		AcceptBackoff:   DefaultBackoff(),
		World: messages.WorldInfo{
			PlaneWidth:      2304,
			PlaneHeight:     1776,
			PlaneMultiplier: 944,
		},
		Session: session.DefaultConfig(),
	}
}

func (c Config) tlsEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func (c Config) originAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}
