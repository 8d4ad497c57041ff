package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const deviceIDKey ctxKey = "deviceID"

// DeviceID returns the authenticated device of the request, if any.
func DeviceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey).(string)
	return id, ok
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter used by browser websockets.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get(mirrorapi.TokenQueryParam)
}

func (a *API) deviceAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			a.respondWithError(w, http.StatusUnauthorized, "missing token")
			return
		}

		id, err := a.devices.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
				a.respondWithError(w, http.StatusUnauthorized, err.Error())
				return
			}
			a.log.Error(r.Context(), "device authentication failed", "error", err)
			a.respondWithError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deviceIDKey, id)))
	})
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
