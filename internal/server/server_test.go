package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danmuck/rscwire/internal/messages"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/session"
	"github.com/danmuck/rscwire/internal/testutil/testlog"
	"github.com/danmuck/rscwire/internal/testutil/tlstest"
	"github.com/danmuck/rscwire/internal/transport/tcp"
	"github.com/danmuck/rscwire/internal/transport/ws"
	"github.com/gorilla/websocket"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ListenAddr = ""
	cfg.HTTPAddr = ""
	cfg.Session.ReadTimeout = 2 * time.Second
	cfg.Session.WriteTimeout = 2 * time.Second
	return cfg
}

type client struct {
	sess *session.Session
	msgs chan schema.Message
	done chan error
}

func startClient(t *testing.T, ctx context.Context, conn session.Conn) *client {
	t.Helper()
	c := &client{msgs: make(chan schema.Message, 16), done: make(chan error, 1)}
	sess, err := session.New(testConfig().Session, messages.ClientRegistry(), conn,
		session.WithMessageHandler(func(msg schema.Message) { c.msgs <- msg }),
	)
	if err != nil {
		t.Fatalf("client session: %v", err)
	}
	c.sess = sess
	go func() { c.done <- sess.Run(ctx) }()
	return c
}

func (c *client) next(t *testing.T) schema.Message {
	t.Helper()
	select {
	case msg := <-c.msgs:
		return msg
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for server message")
		return schema.Message{}
	}
}

func login(name string) schema.Message {
	return schema.Message{Type: messages.TypeLogin, Body: messages.Login{
		Version:  204,
		Keys:     [4]uint32{1, 2, 3, 4},
		Username: name,
		Password: "hunter2",
	}}
}

func expectLoginReplies(t *testing.T, c *client, world messages.WorldInfo, wantIP netip.Addr) {
	t.Helper()
	msg := c.next(t)
	if msg.Type != messages.TypeWorldInfo {
		t.Fatalf("first reply: want worldInfo, got %s", msg.Type)
	}
	if got := msg.Body.(messages.WorldInfo); got != world {
		t.Fatalf("world info: want %+v, got %+v", world, got)
	}
	msg = c.next(t)
	if msg.Type != messages.TypeWelcome {
		t.Fatalf("second reply: want welcome, got %s", msg.Type)
	}
	welcome := msg.Body.(messages.Welcome)
	if welcome.LastIP != wantIP {
		t.Fatalf("welcome ip: want %v, got %v", wantIP, welcome.LastIP)
	}
	if welcome.RecoveryDays != messages.DefaultRecoveryDays {
		t.Fatalf("welcome recovery days: %d", welcome.RecoveryDays)
	}
	msg = c.next(t)
	if msg.Type != messages.TypeServerMessage {
		t.Fatalf("third reply: want serverMessage, got %s", msg.Type)
	}
	if got := msg.Body.(messages.ServerMessage).Message; got != welcomeText {
		t.Fatalf("server message: %q", got)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServiceLoginOverTCP(t *testing.T) {
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := testConfig()
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	conn, err := tcp.Dial(ctx, ln.Addr().String(), cfg.Session)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := startClient(t, ctx, conn)
	if err := c.sess.Send(login("zezima")); err != nil {
		t.Fatalf("send login: %v", err)
	}
	expectLoginReplies(t, c, cfg.World, netip.MustParseAddr("127.0.0.1"))

	if err := c.sess.Send(schema.Message{Type: messages.TypePing}); err != nil {
		t.Fatalf("send ping: %v", err)
	}
	if err := c.sess.Send(schema.Message{Type: messages.TypeLogout}); err != nil {
		t.Fatalf("send logout: %v", err)
	}
	select {
	case err := <-c.done:
		if err != nil {
			t.Fatalf("client run after logout: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not close the connection on logout")
	}
	select {
	case msg := <-c.msgs:
		t.Fatalf("unexpected reply to ping: %s", msg.Type)
	default:
	}
	waitFor(t, "session untrack", func() bool { return svc.Sessions() == 0 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve exit err: %v", err)
	}
}

func TestServiceShutdownClosesSessions(t *testing.T) {
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := testConfig()
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	clientCtx, clientCancel := context.WithCancel(context.Background())
	defer clientCancel()
	conn, err := tcp.Dial(clientCtx, ln.Addr().String(), cfg.Session)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := startClient(t, clientCtx, conn)
	waitFor(t, "session track", func() bool { return svc.Sessions() == 1 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve exit err: %v", err)
	}
	select {
	case err := <-c.done:
		if err != nil {
			t.Fatalf("client run after shutdown: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("client not disconnected on shutdown")
	}
	if svc.Sessions() != 0 {
		t.Fatalf("sessions still tracked after shutdown: %d", svc.Sessions())
	}
}

type flakyListener struct {
	mu       sync.Mutex
	failures int
	accepts  atomic.Int32
	closed   chan struct{}
	once     sync.Once
}

type tempError struct{}

func (tempError) Error() string   { return "accept: too many open files" }
func (tempError) Timeout() bool   { return false }
func (tempError) Temporary() bool { return true }

func (l *flakyListener) Accept() (net.Conn, error) {
	l.accepts.Add(1)
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return nil, tempError{}
	}
	l.mu.Unlock()
	<-l.closed
	return nil, net.ErrClosed
}

func (l *flakyListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

func (l *flakyListener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func TestServeRetriesAcceptErrors(t *testing.T) {
	testlog.Start(t)

	svc, err := NewService(testConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ln := &flakyListener{failures: 3, closed: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	waitFor(t, "accept retries", func() bool { return ln.accepts.Load() >= 4 })
	select {
	case err := <-done:
		t.Fatalf("serve returned early: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve exit err: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("serve did not stop on cancel")
	}
}

func TestServiceLoginOverWebsocket(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.World.Index = 7
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	srv := httptest.NewServer(svc.Router())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := ws.Dial(ctx, url, cfg.Session)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c := startClient(t, ctx, conn)
	defer c.sess.Close()

	if err := c.sess.Send(login("bob")); err != nil {
		t.Fatalf("send login: %v", err)
	}
	expectLoginReplies(t, c, cfg.World, netip.MustParseAddr("127.0.0.1"))
	waitFor(t, "websocket session track", func() bool { return svc.Sessions() == 1 })
}

func TestServeHTTPOverTLS(t *testing.T) {
	testlog.Start(t)

	ca := tlstest.NewAuthority(t)
	cfg := testConfig()
	cfg.TLSCertFile, cfg.TLSKeyFile = ca.IssueLocalhost(t)
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.ServeHTTP(ctx, ln) }()

	httpClient := &http.Client{Transport: &http.Transport{TLSClientConfig: ca.ClientConfig()}}
	resp, err := httpClient.Get("https://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("https healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("https healthz status: %d", resp.StatusCode)
	}

	dialer := &websocket.Dialer{TLSClientConfig: ca.ClientConfig(), HandshakeTimeout: 2 * time.Second}
	conn, err := ws.DialWith(ctx, dialer, "wss://"+ln.Addr().String()+"/ws", cfg.Session)
	if err != nil {
		t.Fatalf("wss dial: %v", err)
	}
	c := startClient(t, ctx, conn)
	if err := c.sess.Send(login("secure")); err != nil {
		t.Fatalf("send login: %v", err)
	}
	expectLoginReplies(t, c, cfg.World, netip.MustParseAddr("127.0.0.1"))

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve http exit err: %v", err)
	}
	select {
	case err := <-c.done:
		if err != nil {
			t.Fatalf("client run after shutdown: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("wss client not disconnected on shutdown")
	}
}

func TestNewServiceRequiresTLSPair(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.TLSCertFile = "server.crt"
	if _, err := NewService(cfg, nil); err == nil {
		t.Fatalf("expected error for cert without key")
	}
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://play.example.org"}
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign origin: want 403, got %d", rec.Code)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	testlog.Start(t)

	svc, err := NewService(testConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	router := svc.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status: %d", rec.Code)
	}
	var health struct {
		Status   string `json:"status"`
		Service  string `json:"service"`
		Version  string `json:"version"`
		Uptime   string `json:"uptime"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Service != "rscd" || health.Version != Version {
		t.Fatalf("unexpected health body: %+v", health)
	}
	if health.Sessions != 0 || health.Uptime == "" {
		t.Fatalf("unexpected health counters: %+v", health)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `rscwire_http_requests_total{method="GET",path="/healthz",status="200"}`) {
		t.Fatalf("metrics missing healthz request counter")
	}
}

func TestMetricsTokenGuardsMetrics(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.MetricsToken = "s3cret"
	svc, err := NewService(cfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	router := svc.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("metrics without token: want 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics with token: want 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay open: %d", rec.Code)
	}
}

func TestRunRequiresListener(t *testing.T) {
	testlog.Start(t)

	svc, err := NewService(testConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatalf("expected error without listen addresses")
	}
}

func TestNewServiceRejectsInvalidSessionConfig(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.Session.BufferSize = 0
	if _, err := NewService(cfg, nil); err == nil {
		t.Fatalf("expected session config error")
	}
}

func TestOriginAllowed(t *testing.T) {
	testlog.Start(t)

	cfg := DefaultConfig()
	if !cfg.originAllowed("https://anything.example") {
		t.Fatalf("empty allow list should accept any origin")
	}
	cfg.AllowedOrigins = []string{" https://Play.Example.org "}
	if !cfg.originAllowed("https://play.example.org") {
		t.Fatalf("expected case-insensitive match")
	}
	if !cfg.originAllowed("") {
		t.Fatalf("non-browser clients send no origin")
	}
	if cfg.originAllowed("https://other.example.org") {
		t.Fatalf("unexpected origin accepted")
	}
}

func TestRemoteIPv4(t *testing.T) {
	testlog.Start(t)

	cases := map[string]netip.Addr{
		"10.0.0.5:43594":          netip.MustParseAddr("10.0.0.5"),
		"[::ffff:10.0.0.6]:43594": netip.MustParseAddr("10.0.0.6"),
		"[::1]:43594":             {},
		"fake:1":                  {},
	}
	for in, want := range cases {
		if got := remoteIPv4(in); got != want {
			t.Fatalf("remoteIPv4(%q): want %v, got %v", in, want, got)
		}
	}
}

func TestNextBackoffDelay(t *testing.T) {
	testlog.Start(t)

	cfg := BackoffConfig{InitialDelay: 10 * time.Millisecond, Multiplier: 2, MaxDelay: 50 * time.Millisecond}
	want := []time.Duration{10, 10, 20, 40, 50, 50}
	for attempt, w := range want {
		if got := NextBackoffDelay(cfg, attempt, nil); got != w*time.Millisecond {
			t.Fatalf("attempt %d: want %v, got %v", attempt, w*time.Millisecond, got)
		}
	}

	cfg.Multiplier = 0.5
	if got := NextBackoffDelay(cfg, 3, nil); got != 10*time.Millisecond {
		t.Fatalf("multiplier below one should not shrink delay: %v", got)
	}

	cfg = BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 1, Jitter: true}
	rng := rand.New(rand.NewPCG(1, 2))
	for attempt := 2; attempt < 20; attempt++ {
		got := NextBackoffDelay(cfg, attempt, rng)
		if got < 50*time.Millisecond || got >= 150*time.Millisecond {
			t.Fatalf("jittered delay out of range: %v", got)
		}
	}
}

func TestDefaultHandlerClosesOnLogoutOnly(t *testing.T) {
	testlog.Start(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, b := net.Pipe()
	defer b.Close()
	sess, err := session.New(testConfig().Session, messages.ServerRegistry(), tcp.New(a, testConfig().Session))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer sess.Close()

	h := DefaultHandler(DefaultConfig().World)
	h(ctx, sess, schema.Message{Type: messages.TypeChat, Body: messages.Chat{Message: "hello"}})
	h(ctx, sess, schema.Message{Type: messages.TypePing})
	select {
	case <-sess.Done():
		t.Fatalf("chat and ping must not close the session")
	default:
	}
	h(ctx, sess, schema.Message{Type: messages.TypeLogout})
	select {
	case <-sess.Done():
	default:
		t.Fatalf("logout must close the session")
	}
}
