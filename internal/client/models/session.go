// Package models defines the client-side data models of the GymRecord client.
package models

import "time"

// User is the identity nested inside a Session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the authenticated identity issued by the backend auth service.
// A Session is immutable once published: every auth event replaces it wholesale.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// UserID returns the session's user id, or "" for a nil session.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

// ExpiresWithin reports whether the access token expires within d of now.
// Sessions without a known expiry never report true.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}

// SessionEvent names the backend event that produced a session change.
type SessionEvent string

const (
	EventInitialSession SessionEvent = "INITIAL_SESSION"
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
	EventUserUpdated    SessionEvent = "USER_UPDATED"
)

// SessionChange is one backend session-changing event. Session is nil
// when the event leaves the client signed out.
type SessionChange struct {
	Event   SessionEvent
	Session *Session
}
