// Package client bootstraps the GymRecord client's local persistence.
//
// InitDatabase opens the SQLite file, applies the embedded goose migrations
// and returns the handle; NewRepositories wires the repositories on top of it.
// ForgetIdentity removes every locally persisted identity record in a single
// transaction.
package client
