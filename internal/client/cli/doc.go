// Package cli provides the interactive "Today I learned" terminal client.
//
// It wires configuration, the local session database, the remote service
// client and the application services, then runs a REPL until the user
// exits. Typical flow: restore the previous session, show the fact list,
// and execute user commands.
//
// Key features:
//   - Login / Register / Logout
//   - Filter by category, sort by votes or recency
//   - Share a new fact (signed-in users)
//   - Vote facts interesting, mind-blowing or false
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
