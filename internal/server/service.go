package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danmuck/rscwire/internal/messages"
	"github.com/danmuck/rscwire/internal/observability"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/session"
	"github.com/danmuck/rscwire/internal/transport/tcp"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handler receives every decoded message of a connection, in arrival order,
// on that connection's read goroutine.
type Handler func(ctx context.Context, sess *session.Session, msg schema.Message)

type Service struct {
	cfg      Config
	handler  Handler
	registry *schema.Registry
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	started  time.Time

	connsMu sync.Mutex
	conns   map[*session.Session]struct{}
	wg      sync.WaitGroup
}

// NewService builds a game server. A nil handler uses DefaultHandler.
func NewService(cfg Config, handler Handler) (*Service, error) {
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, errors.New("server: tls cert and key files must be set together")
	}
	if handler == nil {
		handler = DefaultHandler(cfg.World)
	}
	observability.RegisterMetrics()
	s := &Service{
		cfg:      cfg,
		handler:  handler,
		registry: messages.ServerRegistry(),
		logger:   log.With().Str("component", "server").Logger(),
		started:  time.Now(),
		conns:    make(map[*session.Session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return cfg.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s, nil
}

// Run listens on the configured addresses and blocks until ctx is done or a
// listener fails. Open connections are closed before it returns.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		opened    []net.Listener
		listeners []func() error
	)
	listen := func(addr string) (net.Listener, error) {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			for _, o := range opened {
				_ = o.Close()
			}
			return nil, err
		}
		opened = append(opened, ln)
		return ln, nil
	}
	if s.cfg.ListenAddr != "" {
		ln, err := listen(s.cfg.ListenAddr)
		if err != nil {
			return err
		}
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("game listener ready")
		listeners = append(listeners, func() error { return s.Serve(ctx, ln) })
	}
	if s.cfg.HTTPAddr != "" {
		ln, err := listen(s.cfg.HTTPAddr)
		if err != nil {
			return err
		}
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("http listener ready")
		listeners = append(listeners, func() error { return s.ServeHTTP(ctx, ln) })
	}
	if len(listeners) == 0 {
		return errors.New("server: no listen address configured")
	}

	errc := make(chan error, len(listeners))
	for _, serve := range listeners {
		go func() { errc <- serve() }()
	}
	var first error
	for range listeners {
		if err := <-errc; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	s.wg.Wait()
	return first
}

// Serve accepts stream clients on ln until ctx is done.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
		s.closeAll()
	})
	defer stop()

	attempt := 0
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			attempt++
			delay := NextBackoffDelay(s.cfg.AcceptBackoff, attempt, nil)
			s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("server.Serve accept failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, tcp.New(c, s.cfg.Session), tcp.Name)
		}()
	}
}

// ServeHTTP serves the HTTP router on ln until ctx is done.
func (s *Service) ServeHTTP(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	shutdown := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(shutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("server.ServeHTTP shutdown")
		}
		s.closeAll()
	})

	var err error
	if s.cfg.tlsEnabled() {
		err = srv.ServeTLS(ln, s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	} else {
		err = srv.Serve(ln)
	}
	if !errors.Is(err, http.ErrServerClosed) {
		stop()
		_ = srv.Close()
		return err
	}
	<-shutdown
	return nil
}

func (s *Service) handleConn(ctx context.Context, conn session.Conn, transport string) {
	var sess *session.Session
	sess, err := session.New(s.cfg.Session, s.registry, conn,
		session.WithTransport(transport),
		session.WithMessageHandler(func(msg schema.Message) {
			s.handler(ctx, sess, msg)
		}),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("server.handleConn")
		_ = conn.Close()
		return
	}
	if !s.track(sess) {
		_ = sess.Close()
		return
	}
	defer s.untrack(sess)

	if err := sess.Run(ctx); err != nil {
		s.logger.Debug().Err(err).Str("remote", sess.RemoteAddr()).Msg("server.handleConn ended")
	}
}

// Sessions returns the number of open connections.
func (s *Service) Sessions() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

// track registers sess for coordinated shutdown. It refuses new sessions
// once shutdown has begun.
func (s *Service) track(sess *session.Session) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[sess] = struct{}{}
	return true
}

func (s *Service) untrack(sess *session.Session) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, sess)
}

func (s *Service) closeAll() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for sess := range s.conns {
		_ = sess.Close()
	}
	s.conns = nil
}
