// Package ws adapts a websocket connection to session.Conn. Every binary
// message is one delivery event; frames may still span messages.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/rscwire/internal/protocol/session"
	"github.com/gorilla/websocket"
)

const Name = "ws"

var ErrTextMessage = errors.New("ws: text messages are not supported")

type Conn struct {
	c            *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

var _ session.Conn = (*Conn)(nil)

func New(c *websocket.Conn, cfg session.Config) *Conn {
	c.SetReadLimit(int64(cfg.BufferSize))
	return &Conn{c: c, readTimeout: cfg.ReadTimeout, writeTimeout: cfg.WriteTimeout}
}

// Accept upgrades an HTTP request to a game connection.
func Accept(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader, cfg session.Config) (*Conn, error) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: upgrade: %w", err)
	}
	return New(c, cfg), nil
}

func Dial(ctx context.Context, url string, cfg session.Config) (*Conn, error) {
	return DialWith(ctx, websocket.DefaultDialer, url, cfg)
}

// DialWith dials through d, e.g. one carrying a TLS config for wss URLs.
func DialWith(ctx context.Context, d *websocket.Dialer, url string, cfg session.Config) (*Conn, error) {
	c, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}
	return New(c, cfg), nil
}

func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.readTimeout > 0 {
		if err := c.c.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, err
		}
	}
	mt, data, err := c.c.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		return nil, ErrTextMessage
	}
	return data, nil
}

func (c *Conn) Write(b []byte) error {
	if c.writeTimeout > 0 {
		if err := c.c.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.c.WriteMessage(websocket.BinaryMessage, b)
}

// Close sends a normal close frame before dropping the socket.
func (c *Conn) Close() error {
	_ = c.c.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.c.Close()
}

func (c *Conn) RemoteAddr() string {
	return c.c.RemoteAddr().String()
}
