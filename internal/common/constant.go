// Package common contains shared constants and small helpers used across
// GymRecord client components.
package common

// Header names understood by the backend REST gateway.
const (
	// APIKeyHeaderName carries the project's public (anon) key on every request.
	APIKeyHeaderName = "apikey"

	// AuthorizationHeaderName carries "Bearer <access token>".
	AuthorizationHeaderName = "Authorization"
)

// Keys of the local key-value store.
const (
	// SessionStorageKey holds the persisted backend session (JSON).
	SessionStorageKey = "auth.session"

	// LegacyUserStorageKey holds the pre-token-exchange cached Google identity.
	LegacyUserStorageKey = "@user"
)

// DefaultLang is the language loaded by the translation cache when none is given.
const DefaultLang = "zh-TW"

// GoogleProvider is the provider name used for id-token exchange.
const GoogleProvider = "google"
