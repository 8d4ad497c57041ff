package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HTTP is a client for the self-hosted mirror server.
//
// Probe asks the server's gRPC health service whether it is serving and then
// enrolls this device for a bearer token used by all later calls.
type HTTP struct {
	baseURL    string
	healthAddr string
	client     *http.Client
	dialer     *websocket.Dialer
	log        logging.Logger

	mu    sync.Mutex
	token string
	conns map[*websocket.Conn]struct{}
}

func NewHTTP(baseURL, healthAddr string, log logging.Logger) *HTTP {
	return &HTTP{
		baseURL:    strings.TrimRight(baseURL, "/"),
		healthAddr: healthAddr,
		client:     &http.Client{Timeout: 30 * time.Second},
		dialer:     websocket.DefaultDialer,
		log:        log.With("module", "mirror.http"),
		conns:      make(map[*websocket.Conn]struct{}),
	}
}

// unavailable marks transport failures so callers can tell them apart from
// rejected requests.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", common.ErrSyncUnavailable, err)
}

func (h *HTTP) checkHealth(ctx context.Context) error {
	if h.healthAddr == "" {
		return nil
	}
	conn, err := grpc.NewClient(h.healthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return unavailable(err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return unavailable(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return unavailable(fmt.Errorf("mirror reports %s", resp.GetStatus()))
	}
	return nil
}

func (h *HTTP) Probe(ctx context.Context) error {
	if h.baseURL == "" {
		return unavailable(errors.New("mirror url is not configured"))
	}
	if err := h.checkHealth(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+mirrorapi.DevicesPath, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return unavailable(fmt.Errorf("device enrollment: status code %d", resp.StatusCode))
	}

	var tok mirrorapi.DeviceToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return unavailable(fmt.Errorf("decode device token: %w", err))
	}
	if tok.Token == "" {
		return unavailable(errors.New("empty device token"))
	}

	h.mu.Lock()
	h.token = tok.Token
	h.mu.Unlock()

	h.log.Debug(ctx, "device enrolled", "device", tok.DeviceID)
	return nil
}

func (h *HTTP) bearer() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token == "" {
		return ""
	}
	return "Bearer " + h.token
}

func (h *HTTP) Set(ctx context.Context, path string, value []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, h.baseURL+mirrorapi.DocPath(path), bytes.NewReader(value))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b := h.bearer(); b != "" {
		req.Header.Set("Authorization", b)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("set %s: status code %d", path, resp.StatusCode)
	}
	return nil
}

func (h *HTTP) Get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+mirrorapi.DocPath(path), nil)
	if err != nil {
		return nil, err
	}
	if b := h.bearer(); b != "" {
		req.Header.Set("Authorization", b)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status code %d", path, resp.StatusCode)
	}

	var doc mirrorapi.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docValue(doc), nil
}

func docValue(doc mirrorapi.Document) []byte {
	if len(doc.Value) == 0 || bytes.Equal(doc.Value, []byte("null")) {
		return nil
	}
	return doc.Value
}

func (h *HTTP) watchURL(path string) (string, error) {
	u, err := url.Parse(h.baseURL + mirrorapi.WatchPath(path))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

func (h *HTTP) Subscribe(ctx context.Context, path string, fn func([]byte)) error {
	wsURL, err := h.watchURL(path)
	if err != nil {
		return err
	}

	header := http.Header{}
	if b := h.bearer(); b != "" {
		header.Set("Authorization", b)
	}

	conn, _, err := h.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return unavailable(err)
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		h.drop(conn)
	}()

	go func() {
		defer close(done)
		for {
			var doc mirrorapi.Document
			if err := conn.ReadJSON(&doc); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.log.Warn(ctx, "watch stream ended", "path", path, "error", err)
				}
				return
			}
			fn(docValue(doc))
		}
	}()

	return nil
}

func (h *HTTP) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

func (h *HTTP) Close() error {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.drop(c)
	}
	return nil
}
