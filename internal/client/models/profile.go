package models

import "errors"

// Gender is the profile's optional gender value.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Profile is the user-facing metadata derived from the current session.
// ID and Email mirror the session; the rest comes from the profiles row.
type Profile struct {
	ID        string  `json:"id"`
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Email     *string `json:"email,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := &Profile{ID: p.ID}
	c.Username = clonePtr(p.Username)
	c.AvatarURL = clonePtr(p.AvatarURL)
	c.Email = clonePtr(p.Email)
	c.Gender = clonePtr(p.Gender)
	return c
}

// ProfileRow is the remote profiles row as stored by the data service.
type ProfileRow struct {
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Gender    *Gender `json:"gender"`
}

// ProfileUpdate is the caller-mutable subset of Profile. Nil fields are
// left untouched by an update.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
}

var (
	ErrEmptyUpdate   = errors.New("no profile fields to update")
	ErrInvalidGender = errors.New("gender must be male or female")
)

// Validate checks the update before it is sent to the backend.
func (u ProfileUpdate) Validate() error {
	if u.Username == nil && u.AvatarURL == nil && u.Gender == nil {
		return ErrEmptyUpdate
	}
	if u.Gender != nil && !u.Gender.Valid() {
		return ErrInvalidGender
	}
	return nil
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
