// Package client talks to the hosted backend that stores facts and
// authenticates users.
//
// # Overview
//
// The package provides:
//  1. The Client interface: session auth (GetSession, SignUp,
//     SignInWithPassword, SignOut, RefreshSession, OnAuthStateChange) and
//     table access (Select, Insert, Update).
//  2. RESTClient, an HTTP implementation speaking the GoTrue-style auth API
//     under /auth/v1 and the PostgREST-style table API under /rest/v1.
//  3. Local session persistence (SessionStorage, MetadataStorage) backed by
//     an SQLite key/value table, and InitDatabase/RunMigrations to bootstrap
//     it with embedded goose migrations.
//
// # Error Handling
//
// Transport failures map to ErrUnavailable, 401/403 responses to
// ErrUnauthorized. Any other non-2xx response becomes an *APIError carrying
// the service's message, which callers show to the user as is.
//
// # Auth Events
//
// Listeners registered with OnAuthStateChange first receive
// INITIAL_SESSION, then SIGNED_IN, SIGNED_OUT and TOKEN_REFRESHED as they
// happen. Delivery is asynchronous and ordered.
package client
