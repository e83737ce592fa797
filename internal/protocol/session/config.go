package session

import (
	"fmt"
	"time"

	"github.com/danmuck/rscwire/internal/protocol/stream"
)

// Config holds per-connection limits. Values are fixed when the session is
// constructed.
type Config struct {
	// BufferSize is the reassembly buffer capacity in bytes.
	BufferSize int
	// OutboxSize bounds queued outbound frames. Zero writes synchronously
	// from Send.
	OutboxSize int
	// ReadChunkSize is the largest single read a stream transport issues.
	ReadChunkSize int
	// ReadTimeout closes idle connections. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds each transport write. Zero disables it.
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize:    stream.DefaultCapacity,
		OutboxSize:    64,
		ReadChunkSize: 4096,
		ReadTimeout:   60 * time.Second,
		WriteTimeout:  10 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("session: buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.OutboxSize < 0 {
		return fmt.Errorf("session: outbox_size must not be negative, got %d", c.OutboxSize)
	}
	if c.ReadChunkSize <= 0 {
		return fmt.Errorf("session: read_chunk_size must be positive, got %d", c.ReadChunkSize)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("session: timeouts must not be negative")
	}
	return nil
}
