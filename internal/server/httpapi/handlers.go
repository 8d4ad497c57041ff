package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
	"github.com/go-chi/chi/v5"
)

// maxDocumentBytes bounds a single PUT body. Session collections embed
// images as data URLs, so this is generous.
const maxDocumentBytes = 32 << 20

func toWire(d *documents.Document) mirrorapi.Document {
	return mirrorapi.Document{
		Path:      d.Path,
		Value:     d.Value,
		Version:   d.Version,
		UpdatedAt: d.UpdatedAt,
	}
}

func (a *API) documentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, documents.ErrInvalidPath), errors.Is(err, documents.ErrInvalidValue):
		a.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		a.respondWithError(w, http.StatusNotFound, "document not found")
	default:
		a.log.Error(r.Context(), "document request failed", "path", r.URL.Path, "error", err)
		a.respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		a.log.Warn(r.Context(), "storage ping failed", "error", err)
		a.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	a.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) EnrollDevice(w http.ResponseWriter, r *http.Request) {
	e, err := a.devices.Enroll(r.Context())
	if err != nil {
		a.log.Error(r.Context(), "device enrollment failed", "error", err)
		a.respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	a.log.Info(r.Context(), "device enrolled", "device", e.DeviceID)
	a.respondWithJSON(w, http.StatusCreated, mirrorapi.DeviceToken{DeviceID: e.DeviceID, Token: e.Token})
}

// GetDocument serves both the document and, for paths ending in /watch, its
// change stream.
func (a *API) GetDocument(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	if path, ok := strings.CutSuffix(rest, mirrorapi.WatchSuffix); ok {
		a.WatchDocument(w, r, path)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.opts.RequestTimeout)
	defer cancel()

	d, err := a.docs.Get(ctx, rest)
	if err != nil {
		a.documentError(w, r, err)
		return
	}
	a.respondWithJSON(w, http.StatusOK, toWire(d))
}

// PutDocument replaces the whole document with the request body.
func (a *API) PutDocument(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	deviceID, _ := DeviceID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.respondWithError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		a.respondWithError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	if _, err := a.docs.Put(r.Context(), path, body, deviceID); err != nil {
		a.documentError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
