package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// fakeServer speaks just enough Engine.IO v4 / Socket.IO to drive a Manager.
type fakeServer struct {
	srv *httptest.Server

	dials   atomic.Int32
	refuse  atomic.Bool
	reject  atomic.Bool
	stall   atomic.Bool
	conns   chan *fakeConn
	mu      sync.Mutex
	auths   []AuthPayload
	clients []*fakeConn
}

type fakeConn struct {
	conn         *websocket.Conn
	auth         AuthPayload
	gotClientBye atomic.Bool
	closed       chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{conns: make(chan *fakeConn, 16)}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) URL() string {
	return fs.srv.URL
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	fs.dials.Add(1)
	if fs.refuse.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	if !strings.HasSuffix(r.URL.Path, "/socket.io/") || r.URL.Query().Get("EIO") != "4" {
		http.NotFound(w, r)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	open := `0{"sid":"eio-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`
	if err := conn.Write(ctx, websocket.MessageText, []byte(open)); err != nil {
		return
	}

	_, msg, err := conn.Read(ctx)
	if err != nil || !strings.HasPrefix(string(msg), "40") {
		return
	}
	var auth AuthPayload
	_ = json.Unmarshal(msg[2:], &auth)

	fs.mu.Lock()
	fs.auths = append(fs.auths, auth)
	fs.mu.Unlock()

	if fs.stall.Load() {
		// Never answer the namespace connect.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}
	if fs.reject.Load() {
		_ = conn.Write(ctx, websocket.MessageText, []byte(`44{"message":"invalid token"}`))
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`40{"sid":"sio-sid"}`)); err != nil {
		return
	}

	fc := &fakeConn{conn: conn, auth: auth, closed: make(chan struct{})}
	defer close(fc.closed)
	fs.mu.Lock()
	fs.clients = append(fs.clients, fc)
	fs.mu.Unlock()
	fs.conns <- fc

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if string(msg) == "41" {
			fc.gotClientBye.Store(true)
		}
	}
}

func (fs *fakeServer) Auths() []AuthPayload {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]AuthPayload, len(fs.auths))
	copy(out, fs.auths)
	return out
}

func (fs *fakeServer) next(t *testing.T) *fakeConn {
	t.Helper()
	select {
	case fc := <-fs.conns:
		return fc
	case <-time.After(3 * time.Second):
		t.Fatal("no client connected to the fake server")
		return nil
	}
}

func (fc *fakeConn) send(t *testing.T, frame string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fc.conn.Write(ctx, websocket.MessageText, []byte(frame)))
}

func (fc *fakeConn) emit(t *testing.T, event string, payload interface{}) {
	t.Helper()
	frame, err := EncodeEvent(event, payload)
	require.NoError(t, err)
	fc.send(t, string(frame))
}

func (fc *fakeConn) drop() {
	_ = fc.conn.CloseNow()
}
