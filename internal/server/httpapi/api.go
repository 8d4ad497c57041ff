// Package httpapi exposes the mirror's documents over HTTP and websockets.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
	"github.com/gorilla/websocket"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type API struct {
	docs     *documents.Service
	devices  *devices.Service
	store    Pinger
	log      logging.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewAPI(docs *documents.Service, devs *devices.Service, store Pinger, log logging.Logger, opts Options) *API {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &API{
		docs:    docs,
		devices: devs,
		store:   store,
		log:     log.With("module", "httpapi"),
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
	}
}

// checkOrigin allows requests without an Origin header (native clients) and
// browsers whose origin is listed. "*" allows every origin.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (a *API) respondWithError(w http.ResponseWriter, code int, message string) {
	a.respondWithJSON(w, code, map[string]string{"error": message})
}

func (a *API) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
