// Package websocket maintains the authenticated live channel to the POOPAY
// notification server and fans its events out to subscribers.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/poopay/poopay-realtime/config"
	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// State is the lifecycle position of the live channel.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateDisconnected State = "disconnected"
	StateExhausted    State = "exhausted"
	StateClosed       State = "closed"
)

const (
	defaultReconnectDelay    = time.Second
	defaultReconnectAttempts = 5
	defaultHandshakeTimeout  = 10 * time.Second
	defaultIdleTimeout       = 45 * time.Second
	defaultReadLimit         = 1 << 20
	writeTimeout             = 5 * time.Second
)

var (
	ErrHandshakeRejected = errors.New("live handshake rejected")
	errServerDisconnect  = errors.New("server closed the namespace")
	errEngineClosed      = errors.New("server closed the transport")
	errUnexpectedPacket  = errors.New("unexpected packet during handshake")
)

// Options configures a Manager.
type Options struct {
	URL               string
	ReconnectDelay    time.Duration
	ReconnectAttempts int
	HandshakeTimeout  time.Duration
	HTTPClient        *http.Client
}

// OptionsFromConfig maps the live configuration section onto Options.
func OptionsFromConfig(cfg config.LiveConfig) Options {
	return Options{
		URL:               cfg.URL,
		ReconnectDelay:    cfg.ReconnectDelay(),
		ReconnectAttempts: cfg.ReconnectAttempts,
		HandshakeTimeout:  cfg.HandshakeTimeout(),
	}
}

// Manager owns at most one live session at a time. A session is bound to one
// (token, userID) pair and reconnects on its own until its budget runs out.
type Manager struct {
	opts     Options
	endpoint string
	log      *zap.SugaredLogger
	metrics  *liveMetrics

	mu      sync.Mutex
	session *liveSession
	state   State

	connected atomic.Bool
	attempts  atomic.Int32
}

type liveSession struct {
	token    string
	userID   string
	registry *Registry

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	connMu sync.Mutex
	conn   *websocket.Conn
}

func (s *liveSession) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *liveSession) setConn(conn *websocket.Conn) {
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
}

func (s *liveSession) getConn() *websocket.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

// NewManager validates opts and returns an idle manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.ReconnectAttempts < 0 {
		opts.ReconnectAttempts = defaultReconnectAttempts
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	endpoint, err := socketEndpoint(opts.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ValidationError, "invalid live URL")
	}

	return &Manager{
		opts:     opts,
		endpoint: endpoint,
		log:      logger.GetLogger().Named("live"),
		metrics:  newLiveMetrics(),
		state:    StateIdle,
	}, nil
}

// socketEndpoint turns the live base URL into the Socket.IO websocket URL.
func socketEndpoint(base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("live URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse live URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported live URL scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket.io/"
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open starts a session for the pair. It is a no-op while a session for the
// same pair is alive. A different pair replaces the current session.
func (m *Manager) Open(token, userID string) error {
	if token == "" {
		return apperrors.ValidationFailed("live channel requires a token", "")
	}
	if userID == "" {
		return apperrors.ValidationFailed("live channel requires a user id", "")
	}

	m.mu.Lock()
	old := m.session
	if old != nil && old.token == token && old.userID == userID && !old.finished() {
		m.mu.Unlock()
		return nil
	}

	var registry *Registry
	if old != nil && old.token == token && old.userID == userID {
		// Restart after exhaustion keeps the listeners of the same identity.
		registry = old.registry
	} else {
		registry = NewRegistry(m.log.Named("registry"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &liveSession{
		token:    token,
		userID:   userID,
		registry: registry,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	m.session = sess
	m.state = StateConnecting
	m.setConnected(false)
	m.attempts.Store(0)
	go m.run(sess)
	m.mu.Unlock()

	if old != nil {
		m.stopSession(old)
	}

	m.log.Infow("Live session opened",
		"userID", userID,
		"token", logger.MaskJWT(token))
	return nil
}

// Close ends the current session. No listener runs after Close returns.
func (m *Manager) Close() {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.state = StateClosed
	m.setConnected(false)
	m.mu.Unlock()

	if sess == nil {
		return
	}

	m.stopSession(sess)
	m.log.Infow("Live session closed", "userID", sess.userID)
}

func (m *Manager) stopSession(sess *liveSession) {
	if conn := sess.getConn(); conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := conn.Write(ctx, websocket.MessageText, EncodeDisconnect()); err != nil {
			m.log.Debugw("Failed to send disconnect packet", "error", err)
		}
		cancel()
		sess.cancel()
		_ = conn.Close(websocket.StatusNormalClosure, "client disconnect")
	} else {
		sess.cancel()
	}
	<-sess.done
}

// Connected reports whether the live channel is authenticated right now.
func (m *Manager) Connected() bool {
	return m.connected.Load()
}

// State returns the lifecycle state of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts returns the consecutive failed reconnection attempts of the
// current session.
func (m *Manager) Attempts() int {
	return int(m.attempts.Load())
}

// Subscribe attaches fn to the current session. Without a session it returns
// a no-op unsubscribe.
func (m *Manager) Subscribe(userID string, fn Listener) func() {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess == nil {
		m.log.Warnw("Subscribe called without a live session", "userID", userID)
		return func() {}
	}
	return sess.registry.Add(userID, fn)
}

// setState is ignored for sessions that are no longer current.
func (m *Manager) setState(sess *liveSession, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != sess {
		return
	}
	m.state = state
	m.setConnected(state == StateConnected)
}

// setConnected must be called with m.mu held.
func (m *Manager) setConnected(v bool) {
	m.connected.Store(v)
	if v {
		m.metrics.connected.Set(1)
	} else {
		m.metrics.connected.Set(0)
	}
}

func (m *Manager) run(sess *liveSession) {
	defer close(sess.done)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.opts.ReconnectDelay), uint64(m.opts.ReconnectAttempts)),
		sess.ctx,
	)

	for {
		handshook, err := m.connectAndServe(sess)
		if sess.ctx.Err() != nil {
			return
		}

		if errors.Is(err, errServerDisconnect) {
			m.log.Infow("Server ended the live session", "userID", sess.userID)
			m.setState(sess, StateDisconnected)
			return
		}

		if handshook {
			policy.Reset()
		}

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			m.metrics.exhausted.Inc()
			m.log.Warnw("Live reconnection budget exhausted",
				"userID", sess.userID,
				"attempts", m.opts.ReconnectAttempts,
				"error", err)
			m.setState(sess, StateExhausted)
			return
		}

		m.setState(sess, StateReconnecting)
		m.log.Infow("Live channel lost, reconnecting",
			"userID", sess.userID,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-sess.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		m.attempts.Add(1)
	}
}

// connectAndServe runs one connection. handshook reports whether the server
// accepted the namespace connect before the connection ended.
func (m *Manager) connectAndServe(sess *liveSession) (handshook bool, err error) {
	hctx, cancel := context.WithTimeout(sess.ctx, m.opts.HandshakeTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(hctx, m.endpoint, &websocket.DialOptions{
		HTTPClient: m.opts.HTTPClient,
	})
	if err != nil {
		m.metrics.dials.WithLabelValues("dial_error").Inc()
		return false, fmt.Errorf("failed to dial live endpoint: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(defaultReadLimit)
	sess.setConn(conn)
	defer sess.setConn(nil)

	open, err := m.handshake(hctx, conn, sess)
	if err != nil {
		m.metrics.dials.WithLabelValues("handshake_error").Inc()
		return false, err
	}
	cancel()

	m.metrics.dials.WithLabelValues("connected").Inc()
	m.attempts.Store(0)
	m.setState(sess, StateConnected)
	m.log.Infow("Live channel connected", "userID", sess.userID, "sid", open.SID)

	return true, m.readLoop(sess, conn, open)
}

func (m *Manager) handshake(ctx context.Context, conn *websocket.Conn, sess *liveSession) (OpenPayload, error) {
	var open OpenPayload

	p, err := readPacket(ctx, conn)
	if err != nil {
		return open, err
	}
	if p.Type != PacketOpen {
		return open, fmt.Errorf("%w: %s", errUnexpectedPacket, p.Type)
	}
	if err := json.Unmarshal(p.Data, &open); err != nil {
		return open, fmt.Errorf("failed to decode open packet: %w", err)
	}
	if open.MaxPayload > 0 {
		conn.SetReadLimit(open.MaxPayload + 64)
	}

	connect, err := EncodeConnect(AuthPayload{Token: sess.token, UserID: sess.userID})
	if err != nil {
		return open, err
	}
	if err := conn.Write(ctx, websocket.MessageText, connect); err != nil {
		return open, fmt.Errorf("failed to send connect packet: %w", err)
	}

	for {
		p, err := readPacket(ctx, conn)
		if err != nil {
			return open, err
		}
		switch p.Type {
		case PacketConnect:
			return open, nil
		case PacketConnectError:
			var reject ConnectErrorPayload
			_ = json.Unmarshal(p.Data, &reject)
			return open, fmt.Errorf("%w: %s", ErrHandshakeRejected, reject.Message)
		case PacketPing:
			if err := conn.Write(ctx, websocket.MessageText, EncodePong(p)); err != nil {
				return open, fmt.Errorf("failed to answer ping: %w", err)
			}
		case PacketClose:
			return open, errEngineClosed
		}
	}
}

func (m *Manager) readLoop(sess *liveSession, conn *websocket.Conn, open OpenPayload) error {
	idle := time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
	if idle <= 0 {
		idle = defaultIdleTimeout
	}

	for {
		ctx, cancel := context.WithTimeout(sess.ctx, idle)
		p, err := readPacket(ctx, conn)
		cancel()
		if err != nil {
			return err
		}

		switch p.Type {
		case PacketPing:
			wctx, wcancel := context.WithTimeout(sess.ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, EncodePong(p))
			wcancel()
			if err != nil {
				return fmt.Errorf("failed to answer ping: %w", err)
			}
		case PacketEvent:
			name, data, err := DecodeEvent(p.Data)
			if err != nil {
				m.metrics.events.WithLabelValues("malformed").Inc()
				m.log.Debugw("Dropping malformed event packet", "error", err)
				continue
			}
			if sess.ctx.Err() != nil {
				return sess.ctx.Err()
			}
			sess.registry.Dispatch(name, data)
		case PacketDisconnect:
			return errServerDisconnect
		case PacketClose:
			return errEngineClosed
		}
	}
}

func readPacket(ctx context.Context, conn *websocket.Conn) (Packet, error) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return Packet{}, fmt.Errorf("failed to read live frame: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		p, err := ParsePacket(data)
		if err != nil {
			continue
		}
		return p, nil
	}
}
