package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WatchDocument upgrades to a websocket and sends the document's current
// value followed by every later version. A slow reader only ever gets the
// newest pending version.
func (a *API) WatchDocument(w http.ResponseWriter, r *http.Request, path string) {
	ctx := r.Context()

	sub, err := a.docs.Watch(ctx, path)
	if err != nil {
		a.documentError(w, r, err)
		return
	}
	defer sub.Close()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		a.log.Warn(ctx, "websocket upgrade failed", "path", path, "error", err)
		return
	}
	defer conn.Close()

	deviceID, _ := DeviceID(ctx)
	a.log.Debug(ctx, "watch started", "path", path, "device", deviceID)
	defer a.log.Debug(ctx, "watch ended", "path", path, "device", deviceID)

	// Clients only send control frames; reading keeps pongs and close
	// frames flowing and tells us when the peer goes away.
	gone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
			return
		case <-gone:
			return
		case d, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toWire(&d)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
