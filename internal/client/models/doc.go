// Package models defines the portal's persisted records (users, training
// sessions), the current-session marker and the export bundle.
//
// JSON field names match the portal's storage format, so collections written
// by older devices and export files round-trip unchanged.
package models
