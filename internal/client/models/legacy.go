package models

// LegacyLocalUser is the Google profile snapshot older client versions kept
// in local storage before the backend token exchange existed.
type LegacyLocalUser struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
	VerifiedEmail bool   `json:"verified_email"`
}
