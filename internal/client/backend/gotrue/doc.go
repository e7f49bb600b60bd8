// Package gotrue implements backend.AuthClient over the auth service's REST
// API (/auth/v1).
//
// The client owns the current session. Every change (sign-in, sign-up with an
// issued session, id-token exchange, refresh, sign-out, startup restore) goes
// through a single emission lock that writes the session, persists it to the
// local key-value store and calls the registered listeners in order. Listeners
// therefore observe events in exactly the order they were produced.
//
// Tokens are never validated locally; claims are read unverified only to fill
// in the expiry and user of a session that lacks them.
package gotrue
