// Package oauth runs the interactive Google sign-in from a terminal: it opens
// the consent page in the user's browser, receives the authorization code on a
// loopback listener and exchanges it (with PKCE) for an identity token.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const callbackPath = "/callback"

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrNoIDToken     = errors.New("provider returned no id_token")
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string

	// overridable in tests
	AuthURL  string
	TokenURL string
}

type GoogleProvider struct {
	config  oauth2.Config
	openURL func(string) error
	log     logging.Logger
}

// NewGoogleProvider builds a provider. openURL shows the consent page to the
// user, usually by launching a browser or printing the link.
func NewGoogleProvider(c GoogleConfig, openURL func(string) error, log logging.Logger) *GoogleProvider {
	ep := endpoints.Google
	if c.AuthURL != "" {
		ep.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		ep.TokenURL = c.TokenURL
	}
	ep.AuthStyle = oauth2.AuthStyleInParams

	return &GoogleProvider{
		config: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     ep,
			Scopes:       []string{"openid", "email", "profile"},
		},
		openURL: openURL,
		log:     log,
	}
}

// Configured reports whether a client id is set.
func (p *GoogleProvider) Configured() bool {
	return p.config.ClientID != ""
}

type callbackResult struct {
	code string
	err  error
}

// Authenticate runs one handshake and returns the identity token. Abandoning
// the consent page or cancelling ctx yields common.ErrCancelled.
func (p *GoogleProvider) Authenticate(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("start callback listener: %w", err)
	}

	cfg := p.config
	cfg.RedirectURL = "http://" + ln.Addr().String() + callbackPath

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r, state)
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal."))
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Warn(ctx, "oauth callback server stopped", "error", err)
		}
	}()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	if err := p.openURL(authURL); err != nil {
		return "", fmt.Errorf("open consent page: %w", err)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", common.ErrCancelled, ctx.Err())
	}
	if res.err != nil {
		return "", res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchange authorization code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}

	p.log.Debug(ctx, "google handshake completed")
	return idToken, nil
}

func parseCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	if q.Get("state") != state {
		return callbackResult{err: ErrStateMismatch}
	}
	if e := q.Get("error"); e != "" {
		if e == "access_denied" {
			return callbackResult{err: common.ErrCancelled}
		}
		return callbackResult{err: fmt.Errorf("provider error: %s", e)}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: errors.New("callback without authorization code")}
	}
	return callbackResult{code: code}
}
