package mirror

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// fakeServer is a minimal stand-in for the mirror server.
type fakeServer struct {
	mu       sync.Mutex
	docs     map[string][]byte
	auth     []string
	watchers []*websocket.Conn
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	up := websocket.Upgrader{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+mirrorapi.DevicesPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(mirrorapi.DeviceToken{DeviceID: "dev-1", Token: "tok-1"})
	})

	mux.HandleFunc("/api/v1/docs/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()

		rest := strings.TrimPrefix(r.URL.Path, mirrorapi.DocsPrefix)
		if path, ok := strings.CutSuffix(rest, mirrorapi.WatchSuffix); ok {
			conn, err := up.Upgrade(w, r, nil)
			if !assert.NoError(t, err) {
				return
			}
			f.mu.Lock()
			f.watchers = append(f.watchers, conn)
			doc := mirrorapi.Document{Path: path, Value: f.docs[path]}
			f.mu.Unlock()
			_ = conn.WriteJSON(doc)
			return
		}

		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.docs[rest] = body
			watchers := append([]*websocket.Conn(nil), f.watchers...)
			f.mu.Unlock()
			for _, c := range watchers {
				_ = c.WriteJSON(mirrorapi.Document{Path: rest, Value: body, Version: 2})
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			f.mu.Lock()
			v, ok := f.docs[rest]
			f.mu.Unlock()
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(mirrorapi.Document{Path: rest, Value: v, Version: 1})
		}
	})
	return mux
}

func startHealth(t *testing.T, status healthpb.HealthCheckResponse_ServingStatus) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", status)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func newHTTPMirror(t *testing.T, healthAddr string) (*HTTP, *fakeServer) {
	t.Helper()
	fs := &fakeServer{docs: map[string][]byte{}}
	ts := httptest.NewServer(fs.handler(t))
	t.Cleanup(ts.Close)

	m := NewHTTP(ts.URL+"/", healthAddr, logging.NewDiscardLogger())
	t.Cleanup(func() { _ = m.Close() })
	return m, fs
}

func TestHTTP_ProbeEnrollsAndUsesToken(t *testing.T) {
	m, fs := newHTTPMirror(t, startHealth(t, healthpb.HealthCheckResponse_SERVING))
	ctx := context.Background()

	require.NoError(t, m.Probe(ctx))
	require.NoError(t, m.Set(ctx, "users", []byte(`[{"id":"u1"}]`)))

	v, err := m.Get(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"u1"}]`, string(v))

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, a := range fs.auth {
		assert.Equal(t, "Bearer tok-1", a)
	}
}

func TestHTTP_ProbeFailsWhenNotServing(t *testing.T) {
	m, _ := newHTTPMirror(t, startHealth(t, healthpb.HealthCheckResponse_NOT_SERVING))
	err := m.Probe(context.Background())
	assert.ErrorIs(t, err, common.ErrSyncUnavailable)
}

func TestHTTP_ProbeFailsWithoutServer(t *testing.T) {
	m := NewHTTP("http://127.0.0.1:1", "", logging.NewDiscardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, m.Probe(ctx), common.ErrSyncUnavailable)

	assert.ErrorIs(t, NewHTTP("", "", logging.NewDiscardLogger()).Probe(ctx), common.ErrSyncUnavailable)
}

func TestHTTP_GetMissingIsNil(t *testing.T) {
	m, _ := newHTTPMirror(t, "")
	v, err := m.Get(context.Background(), "sessions")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestHTTP_Subscribe(t *testing.T) {
	m, _ := newHTTPMirror(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []byte, 4)
	require.NoError(t, m.Subscribe(ctx, "sessions", func(v []byte) { got <- v }))

	select {
	case v := <-got:
		assert.Nil(t, v, "absent document arrives as nil")
	case <-time.After(2 * time.Second):
		t.Fatal("no initial value")
	}

	require.NoError(t, m.Set(context.Background(), "sessions", []byte(`[{"id":"s1"}]`)))

	select {
	case v := <-got:
		assert.JSONEq(t, `[{"id":"s1"}]`, string(v))
	case <-time.After(2 * time.Second):
		t.Fatal("no update")
	}
}

func TestHTTP_WatchURL(t *testing.T) {
	m := NewHTTP("https://mirror.example.com", "", logging.NewDiscardLogger())
	u, err := m.watchURL("users")
	require.NoError(t, err)
	assert.Equal(t, "wss://mirror.example.com/api/v1/docs/users/watch", u)
}
