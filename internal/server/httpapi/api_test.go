package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
	"github.com/dmitrijs2005/trainingportal/internal/server/storage"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	*httptest.Server
	docs *documents.Service
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	m := storage.NewInMemoryManager()
	log := logging.NewDiscardLogger()

	docs := documents.NewService(m.Documents(), log)
	devs := devices.NewService(m.Devices(), "test-secret", time.Hour)

	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}
	ts := httptest.NewServer(NewAPI(docs, devs, m, log, opts).Router())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, docs: docs}
}

func (ts *testServer) enroll(t *testing.T) mirrorapi.DeviceToken {
	t.Helper()
	resp, err := http.Post(ts.URL+mirrorapi.DevicesPath, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tok mirrorapi.DeviceToken
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.DeviceID)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := ts.do(t, http.MethodGet, mirrorapi.HealthPath, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestHealth_StorageDown(t *testing.T) {
	log := logging.NewDiscardLogger()
	m := storage.NewInMemoryManager()
	api := NewAPI(documents.NewService(m.Documents(), log), devices.NewService(m.Devices(), "k", time.Hour),
		pingFunc(func(context.Context) error { return errors.New("down") }), log, Options{})

	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, mirrorapi.HealthPath, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocs_RequireToken(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, _ := ts.do(t, http.MethodGet, mirrorapi.DocPath("users"), "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, mirrorapi.DocPath("users"), "forged", `[]`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDocs_PutAndGet(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok := ts.enroll(t)

	resp, _ := ts.do(t, http.MethodGet, mirrorapi.DocPath("sessions"), tok.Token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, mirrorapi.DocPath("sessions"), tok.Token, `[{"id":"s1"}]`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodPut, mirrorapi.DocPath("sessions"), tok.Token, `[{"id":"s2"}]`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, mirrorapi.DocPath("sessions"), tok.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc mirrorapi.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "sessions", doc.Path)
	assert.Equal(t, int64(2), doc.Version)
	assert.JSONEq(t, `[{"id":"s2"}]`, string(doc.Value))
	assert.False(t, doc.UpdatedAt.IsZero())

	stored, err := ts.docs.Get(context.Background(), "sessions")
	require.NoError(t, err)
	assert.Equal(t, tok.DeviceID, stored.UpdatedBy)
}

func TestDocs_QueryToken(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok := ts.enroll(t)

	resp, _ := ts.do(t, http.MethodGet, mirrorapi.DocPath("users")+"?token="+tok.Token, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocs_BadRequests(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok := ts.enroll(t)

	resp, _ := ts.do(t, http.MethodPut, mirrorapi.DocPath("users"), tok.Token, `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPut, mirrorapi.DocPath("a%20b"), tok.Token, `[]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, mirrorapi.DocsPrefix, tok.Token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCORS_Preflight(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: []string{"https://portal.example"}})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+mirrorapi.DocPath("users"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://portal.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func wsURL(ts *testServer, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + mirrorapi.WatchPath(path)
}

func TestWatch_CurrentThenUpdates(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok := ts.enroll(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tok.Token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "users"), header)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first mirrorapi.Document
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "users", first.Path)
	assert.Equal(t, int64(0), first.Version)
	assert.Equal(t, "null", string(first.Value))

	resp, _ := ts.do(t, http.MethodPut, mirrorapi.DocPath("users"), tok.Token, `[{"id":"u1"}]`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var next mirrorapi.Document
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, int64(1), next.Version)
	assert.JSONEq(t, `[{"id":"u1"}]`, string(next.Value))
}

func TestWatch_ClosedByClientReleasesSubscription(t *testing.T) {
	ts := newTestServer(t, Options{})
	tok := ts.enroll(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "sessions")+"?token="+tok.Token, nil)
	require.NoError(t, err)

	var first mirrorapi.Document
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 1, ts.docs.Watchers("sessions"))

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return ts.docs.Watchers("sessions") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_RejectsUnlistedOrigin(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: []string{"https://portal.example"}})
	tok := ts.enroll(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tok.Token)
	header.Set("Origin", "https://evil.example")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "users"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?token=q", nil)
	assert.Equal(t, "q", bearerToken(r))

	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", bearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", bearerToken(r))
}
