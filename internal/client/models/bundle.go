package models

import "encoding/json"

// BundleVersion is written into every export.
const BundleVersion = "1.0.0"

// Bundle is the export/import file format.
type Bundle struct {
	Users    []User    `json:"users"`
	Sessions []Session `json:"sessions"`
	Exported Timestamp `json:"exported"`
	Version  string    `json:"version"`
}

// RawBundle is a decoded import file. Each collection is kept as raw JSON
// so it can be stored verbatim; a nil field means the key was absent.
type RawBundle struct {
	Users    json.RawMessage `json:"users"`
	Sessions json.RawMessage `json:"sessions"`
}

// Collection names one of the two mirrored collections.
type Collection string

const (
	CollectionUsers    Collection = "users"
	CollectionSessions Collection = "sessions"
)

var Collections = []Collection{CollectionUsers, CollectionSessions}
