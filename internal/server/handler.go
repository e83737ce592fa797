package server

import (
	"context"
	"net/netip"

	"github.com/danmuck/rscwire/internal/messages"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/session"
)

const welcomeText = "@que@Welcome to rscd!"

// DefaultHandler answers a login with the world layout and the welcome box,
// and closes the connection on logout. Ping needs no reply; the frame itself
// keeps the read deadline fresh. Everything else is logged by type only.
func DefaultHandler(world messages.WorldInfo) Handler {
	return func(ctx context.Context, sess *session.Session, msg schema.Message) {
		logger := sess.Logger()
		switch msg.Type {
		case messages.TypeLogin:
			login, _ := msg.Body.(messages.Login)
			logger.Info().Str("username", login.Username).Bool("reconnecting", login.Reconnecting).Msg("server.login")
			replies := []schema.Message{
				{Type: messages.TypeWorldInfo, Body: world},
				{Type: messages.TypeWelcome, Body: messages.Welcome{LastIP: remoteIPv4(sess.RemoteAddr())}},
				{Type: messages.TypeServerMessage, Body: messages.ServerMessage{Message: welcomeText}},
			}
			for _, reply := range replies {
				if err := sess.Send(reply); err != nil {
					logger.Warn().Err(err).Str("type", reply.Type).Msg("server.login reply failed")
					return
				}
			}
		case messages.TypePing:
		case messages.TypeLogout, messages.TypeCloseConnection:
			logger.Info().Str("type", msg.Type).Msg("server.logout")
			_ = sess.Close()
		default:
			logger.Debug().Str("type", msg.Type).Msg("server.message")
		}
	}
}

// remoteIPv4 returns the IPv4 part of a host:port, or the zero Addr when the
// peer is not reachable over IPv4.
func remoteIPv4(remote string) netip.Addr {
	ap, err := netip.ParseAddrPort(remote)
	if err != nil {
		return netip.Addr{}
	}
	addr := ap.Addr().Unmap()
	if !addr.Is4() {
		return netip.Addr{}
	}
	return addr
}
