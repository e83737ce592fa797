// Package tcp adapts a stream socket to session.Conn.
package tcp

import (
	"context"
	"net"
	"time"

	"github.com/danmuck/rscwire/internal/protocol/session"
)

const Name = "tcp"

type Conn struct {
	c            net.Conn
	buf          []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
}

var _ session.Conn = (*Conn)(nil)

func New(c net.Conn, cfg session.Config) *Conn {
	size := cfg.ReadChunkSize
	if size <= 0 {
		size = session.DefaultConfig().ReadChunkSize
	}
	return &Conn{
		c:            c,
		buf:          make([]byte, size),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Dial connects to a game server.
func Dial(ctx context.Context, addr string, cfg session.Config) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(c, cfg), nil
}

// Read returns the bytes of one socket read. The slice is reused by the next
// call.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.readTimeout > 0 {
		if err := c.c.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, err
		}
	}
	n, err := c.c.Read(c.buf)
	if n > 0 {
		return c.buf[:n], nil
	}
	return nil, err
}

func (c *Conn) Write(b []byte) error {
	if c.writeTimeout > 0 {
		if err := c.c.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := c.c.Write(b)
	return err
}

func (c *Conn) Close() error {
	return c.c.Close()
}

func (c *Conn) RemoteAddr() string {
	return c.c.RemoteAddr().String()
}
