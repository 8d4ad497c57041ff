// Package mirrorapi holds the wire types shared by the mirror server and its
// HTTP client.
package mirrorapi

import (
	"encoding/json"
	"time"
)

const (
	DevicesPath = "/api/v1/devices"
	DocsPrefix  = "/api/v1/docs/"
	WatchSuffix = "/watch"
	HealthPath  = "/health"

	// TokenQueryParam carries the device token on websocket upgrades from
	// clients that cannot set headers.
	TokenQueryParam = "token"
)

// Document is one stored path. Value is null when the path was never written.
type Document struct {
	Path      string          `json:"path"`
	Value     json.RawMessage `json:"value"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt,omitzero"`
}

type DeviceToken struct {
	DeviceID string `json:"deviceId"`
	Token    string `json:"token"`
}

// DocPath returns the URL path of a document.
func DocPath(path string) string {
	return DocsPrefix + path
}

// WatchPath returns the websocket URL path of a document.
func WatchPath(path string) string {
	return DocsPrefix + path + WatchSuffix
}
