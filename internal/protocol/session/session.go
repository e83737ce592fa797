package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/danmuck/rscwire/internal/observability"
	"github.com/danmuck/rscwire/internal/protocol"
	"github.com/danmuck/rscwire/internal/protocol/frame"
	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/stream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danmuck/rscwire/internal/protocol/session"

type Option func(*Session)

// WithMessageHandler subscribes fn to decoded inbound messages.
func WithMessageHandler(fn func(schema.Message)) Option {
	return func(s *Session) { s.onMessage = fn }
}

// WithErrorHandler subscribes fn to per-message failures.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithTransport sets the transport label used in logs and metrics.
func WithTransport(name string) Option {
	return func(s *Session) { s.transport = name }
}

type outbound struct {
	msgType string
	buf     []byte
}

type Session struct {
	cfg       Config
	registry  *schema.Registry
	conn      Conn
	reasm     *stream.Reassembler
	transport string
	logger    zerolog.Logger
	tracer    trace.Tracer

	onMessage func(schema.Message)
	onError   func(error)

	queue   chan outbound
	writeMu sync.Mutex
	writing atomic.Bool
	werr    atomic.Value

	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config, registry *schema.Registry, conn Conn, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.New("session: registry is required")
	}
	if conn == nil {
		return nil, errors.New("session: conn is required")
	}
	s := &Session{
		cfg:       cfg,
		registry:  registry,
		conn:      conn,
		reasm:     stream.New(cfg.BufferSize),
		transport: "unknown",
		tracer:    otel.Tracer(tracerName),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.OutboxSize > 0 {
		s.queue = make(chan outbound, cfg.OutboxSize)
	}
	s.logger = log.With().
		Str("transport", s.transport).
		Str("remote", conn.RemoteAddr()).
		Logger()
	return s, nil
}

func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr() }

func (s *Session) Logger() zerolog.Logger { return s.logger }

// HandleData feeds one delivery event through the reassembler and dispatches
// every frame it completes before returning. The returned error is always
// connection-fatal.
func (s *Session) HandleData(ctx context.Context, chunk []byte) error {
	err := s.reasm.Feed(chunk, func(f frame.Frame) {
		s.dispatch(ctx, f)
	})
	if err != nil {
		observability.RecordFatalError(s.transport, errorKind(err))
		s.logger.Error().Err(err).Int("buffered", s.reasm.Buffered()).Msg("session.HandleData fatal")
	}
	return err
}

func (s *Session) dispatch(ctx context.Context, f frame.Frame) {
	name, ok := s.registry.Inbound.Name(f.Opcode)
	if !ok {
		s.report(&DispatchError{Opcode: f.Opcode, Err: protocol.ErrUnknownOpcode})
		return
	}
	decode, ok := s.registry.Decoders[name]
	if !ok {
		s.report(&DispatchError{Opcode: f.Opcode, Type: name, Err: protocol.ErrMissingHandler})
		return
	}

	_, span := s.tracer.Start(ctx, "rscwire.decode "+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.Int("rscwire.opcode", int(f.Opcode)),
			attribute.String("rscwire.type", name),
			attribute.Int("rscwire.body_len", len(f.Body)),
			attribute.String("rscwire.transport", s.transport),
		),
	)
	body, err := runDecode(decode, f.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		s.report(&DispatchError{Opcode: f.Opcode, Type: name, Err: err})
		return
	}
	span.SetStatus(codes.Ok, "")
	span.End()

	observability.RecordFrameIn(s.transport, name)
	s.logger.Debug().Str("type", name).Int("opcode", int(f.Opcode)).Int("len", len(f.Body)).Msg("session.dispatch")
	if s.onMessage != nil {
		s.onMessage(schema.Message{Type: name, Body: body})
	}
}

func runDecode(decode schema.DecodeFunc, body []byte) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: decoder panic: %v", r)
		}
	}()
	return decode(packet.Wrap(body))
}

func runEncode(encode schema.EncodeFunc, p *packet.Packet, body any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: encoder panic: %v", r)
		}
	}()
	return encode(p, body)
}

func (s *Session) report(err *DispatchError) {
	observability.RecordDispatchError(s.transport, errorKind(err))
	s.logger.Warn().Err(err.Err).Str("type", err.Type).Int("opcode", int(err.Opcode)).Msg("session.dispatch failed")
	if s.onError != nil {
		s.onError(err)
	}
}

// Encode resolves msg to its opcode and encoder and returns the framed bytes.
func (s *Session) Encode(msg schema.Message) ([]byte, error) {
	op, ok := s.registry.Outbound.Opcode(msg.Type)
	if !ok {
		return nil, &DispatchError{Type: msg.Type, Err: protocol.ErrUnknownOpcode}
	}
	encode, ok := s.registry.Encoders[msg.Type]
	if !ok {
		return nil, &DispatchError{Opcode: op, Type: msg.Type, Err: protocol.ErrMissingHandler}
	}
	p := packet.New()
	if err := runEncode(encode, p, msg.Body); err != nil {
		return nil, &DispatchError{Opcode: op, Type: msg.Type, Err: err}
	}
	buf, err := frame.Encode(frame.Frame{Opcode: op, Body: p.Bytes()})
	if err != nil {
		return nil, &DispatchError{Opcode: op, Type: msg.Type, Err: err}
	}
	return buf, nil
}

// Send encodes msg and queues it for the writer. It never blocks: a full
// outbox fails with ErrOutboxFull. With OutboxSize zero the frame is written
// before Send returns.
func (s *Session) Send(msg schema.Message) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	buf, err := s.Encode(msg)
	if err != nil {
		var de *DispatchError
		if errors.As(err, &de) {
			s.report(de)
		}
		return err
	}
	if s.queue == nil {
		return s.write(outbound{msgType: msg.Type, buf: buf})
	}
	select {
	case s.queue <- outbound{msgType: msg.Type, buf: buf}:
		return nil
	default:
		observability.RecordDispatchError(s.transport, errorKind(ErrOutboxFull))
		s.logger.Warn().Str("type", msg.Type).Int("outbox", cap(s.queue)).Msg("session.Send outbox full")
		return ErrOutboxFull
	}
}

func (s *Session) write(out outbound) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.Write(out.buf); err != nil {
		return fmt.Errorf("session: write %s: %w", out.msgType, err)
	}
	observability.RecordFrameOut(s.transport, out.msgType)
	return nil
}

// Run reads delivery events until ctx is done, the peer goes away, or a
// fatal stream error occurs, and closes the connection before returning.
// A clean shutdown returns nil.
func (s *Session) Run(ctx context.Context) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	release := observability.SessionOpened(s.transport)
	defer release()
	s.logger.Info().Msg("session opened")

	var wg sync.WaitGroup
	if s.queue != nil {
		s.writing.Store(true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.writeLoop()
		}()
	}
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	err := s.readLoop(ctx)
	_ = s.Close()
	wg.Wait()

	if werr, ok := s.werr.Load().(error); ok && werr != nil {
		err = werr
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("session closed")
		return err
	}
	s.logger.Info().Msg("session closed")
	return nil
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		chunk, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			select {
			case <-s.done:
				return nil
			default:
			}
			observability.RecordFatalError(s.transport, "transport")
			return fmt.Errorf("session: read: %w", err)
		}
		if err := s.HandleData(ctx, chunk); err != nil {
			return err
		}
	}
}

// writeLoop owns transport writes while Run is active. On close it flushes
// whatever is already queued and then closes the connection.
func (s *Session) writeLoop() {
	defer s.conn.Close()
	for {
		select {
		case out := <-s.queue:
			if err := s.write(out); err != nil {
				s.werr.Store(err)
				s.logger.Error().Err(err).Msg("session.writeLoop")
				_ = s.Close()
				return
			}
		case <-s.done:
			for {
				select {
				case out := <-s.queue:
					if err := s.write(out); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// Close stops the session. Frames already queued are flushed when Run's
// writer is active. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if !s.writing.Load() {
			err = s.conn.Close()
		}
	})
	return err
}

// Done is closed once Close has been called.
func (s *Session) Done() <-chan struct{} { return s.done }

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, ErrClosed)
}
