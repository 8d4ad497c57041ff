// Package cli provides the interactive portal client.
//
// It wires configuration, the local store, the remote mirror and the sync
// engine, then runs a REPL. Typical flow: sign in with a password, browse and
// edit training sessions, and (for admins) manage accounts and portal data.
//
// Key features:
//   - Login / Logout with password-only sign-in
//   - Sessions: list, find, view, create, edit, delete
//   - Admin: users, statistics, reports, export/import, reset, backups
//   - Remote changes are announced as they arrive
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
