package session

import "context"

// Conn is one game connection as seen by the dispatch layer. Each Read
// returns the bytes of a single delivery event. Write is only ever called
// from one goroutine at a time.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(b []byte) error
	Close() error
	RemoteAddr() string
}
