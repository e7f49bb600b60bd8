package gotrue

import (
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idTokenGrant struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         models.User `json:"user"`
}

func (c *Client) sessionFrom(r tokenResponse) *models.Session {
	s := &models.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		User:         r.User,
	}
	switch {
	case r.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	fillFromClaims(s)
	return s
}

// fillFromClaims completes the expiry and user of s from its access token's
// claims. The token is not verified.
func fillFromClaims(s *models.Session) {
	if !s.ExpiresAt.IsZero() && s.User.ID != "" && s.User.Email != "" {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return
	}

	if s.ExpiresAt.IsZero() {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Time
		}
	}
	if s.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			s.User.ID = sub
		}
	}
	if s.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			s.User.Email = email
		}
	}
}
