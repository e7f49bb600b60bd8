package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
)

// DefaultRefreshMargin is how long before expiry a session is refreshed.
const DefaultRefreshMargin = 60 * time.Second

// ErrSessionReplaced is returned by RefreshSession when the session it
// refreshed was signed out or replaced before the response arrived. The
// result is dropped.
var ErrSessionReplaced = errors.New("session replaced during refresh")

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithRefreshMargin(d time.Duration) Option {
	return func(c *Client) { c.margin = d }
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   metadata.Repository
	log     logging.Logger
	now     func() time.Time
	margin  time.Duration

	mu       sync.RWMutex
	session  *models.Session
	restored bool

	// emitMu serialises session writes and listener calls.
	emitMu sync.Mutex

	lmu       sync.Mutex
	listeners map[uint64]backend.SessionListener
	order     []uint64
	nextID    uint64
}

var _ backend.AuthClient = (*Client)(nil)

// New creates an auth client for the project at projectURL. store may be nil,
// in which case sessions are kept in memory only.
func New(projectURL, apiKey string, store metadata.Repository, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(projectURL, "/") + "/auth/v1",
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		store:     store,
		log:       log,
		now:       time.Now,
		margin:    DefaultRefreshMargin,
		listeners: make(map[uint64]backend.SessionListener),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	return c.grant(ctx, "password", credentials{Email: email, Password: password}, models.EventSignedIn)
}

func (c *Client) SignInWithIDToken(ctx context.Context, provider, idToken string) (*models.Session, error) {
	return c.grant(ctx, "id_token", idTokenGrant{Provider: provider, IDToken: idToken}, models.EventSignedIn)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	var resp tokenResponse
	if err := c.post(ctx, c.baseURL+"/signup", "", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	// with e-mail confirmation enabled the service answers with the bare user
	if resp.AccessToken == "" {
		return nil, nil
	}
	s := c.sessionFrom(resp)
	c.emit(ctx, models.EventSignedIn, s)
	return s, nil
}

// SignOut revokes the session remotely and clears it locally. A session the
// service no longer knows is still cleared.
func (c *Client) SignOut(ctx context.Context) error {
	cur := c.current()
	if cur != nil {
		err := c.post(ctx, c.baseURL+"/logout", cur.AccessToken, nil, nil)
		if err != nil && !errors.Is(err, backend.ErrUnauthorized) && !errors.Is(err, backend.ErrNotFound) {
			return fmt.Errorf("sign out: %w", err)
		}
	}
	c.emit(ctx, models.EventSignedOut, nil)
	return nil
}

// GetSession returns the current session. The first call restores the
// persisted session, refreshing it when expired, and emits INITIAL_SESSION.
func (c *Client) GetSession(ctx context.Context) (*models.Session, error) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if c.isRestored() {
		return c.current(), nil
	}

	s, err := c.load(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to restore session", "error", err)
	}

	if s != nil && s.ExpiresWithin(c.now(), c.margin) {
		refreshed, err := c.refresh(ctx, s.RefreshToken)
		switch {
		case err == nil:
			s = refreshed
		case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrValidation):
			c.log.Info(ctx, "persisted session rejected", "error", err)
			s = nil
		default:
			// keep the stale session; the watcher retries once the service is back
			c.log.Warn(ctx, "failed to refresh persisted session", "error", err)
		}
	}

	c.emitLocked(ctx, models.EventInitialSession, s)
	return s, nil
}

// RefreshSession exchanges the current refresh token for a new session and
// emits TOKEN_REFRESHED. A rejected refresh token signs the client out.
func (c *Client) RefreshSession(ctx context.Context) (*models.Session, error) {
	cur := c.current()
	if cur == nil || cur.RefreshToken == "" {
		return nil, common.ErrNoSession
	}

	s, err := c.refresh(ctx, cur.RefreshToken)

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	// a sign-in or sign-out while the request was in flight owns the session now
	if c.current() != cur {
		c.log.Debug(ctx, "discarding refresh of a replaced session", "user_id", cur.UserID())
		return nil, ErrSessionReplaced
	}

	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrValidation) {
			c.emitLocked(ctx, models.EventSignedOut, nil)
		}
		return nil, err
	}
	c.emitLocked(ctx, models.EventTokenRefreshed, s)
	return s, nil
}

// StartAutoRefresh refreshes the session shortly before it expires. It blocks
// until ctx is done.
func (c *Client) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.refreshIfDue(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) refreshIfDue(ctx context.Context) {
	cur := c.current()
	if !cur.ExpiresWithin(c.now(), c.margin) {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := c.RefreshSession(rctx); err != nil && !errors.Is(err, ErrSessionReplaced) {
		c.log.Warn(ctx, "session refresh failed", "error", err)
	}
}

// AccessToken returns the current access token, or "" when signed out.
// It is suitable as a backend.TokenSource.
func (c *Client) AccessToken() string {
	if s := c.current(); s != nil {
		return s.AccessToken
	}
	return ""
}

// OnSessionChange registers listener. Listeners are called synchronously, in
// registration order, while the emission lock is held; they must not call
// back into the client.
func (c *Client) OnSessionChange(listener backend.SessionListener) func() {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = listener
	c.order = append(c.order, id)
	c.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.lmu.Lock()
			defer c.lmu.Unlock()
			delete(c.listeners, id)
			for i, v := range c.order {
				if v == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (c *Client) grant(ctx context.Context, grantType string, body any, ev models.SessionEvent) (*models.Session, error) {
	var resp tokenResponse
	u := c.baseURL + "/token?grant_type=" + url.QueryEscape(grantType)
	if err := c.post(ctx, u, "", body, &resp); err != nil {
		return nil, fmt.Errorf("sign in (%s): %w", grantType, err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("sign in (%s): %w: empty access token", grantType, backend.ErrUnauthorized)
	}
	s := c.sessionFrom(resp)
	c.emit(ctx, ev, s)
	return s, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	var resp tokenResponse
	u := c.baseURL + "/token?grant_type=refresh_token"
	if err := c.post(ctx, u, "", refreshGrant{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return c.sessionFrom(resp), nil
}

func (c *Client) post(ctx context.Context, u, bearer string, body, dest any) error {
	req, err := backend.NewRequest(ctx, http.MethodPost, u, c.apiKey, bearer, body)
	if err != nil {
		return err
	}
	return backend.Do(c.http, req, dest)
}

func (c *Client) emit(ctx context.Context, ev models.SessionEvent, s *models.Session) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.emitLocked(ctx, ev, s)
}

func (c *Client) emitLocked(ctx context.Context, ev models.SessionEvent, s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.restored = true
	c.mu.Unlock()

	if err := c.persist(ctx, s); err != nil {
		c.log.Warn(ctx, "failed to persist session", "event", ev, "error", err)
	}

	c.log.Debug(ctx, "session changed", "event", ev, "user_id", s.UserID())

	change := models.SessionChange{Event: ev, Session: s}
	for _, l := range c.snapshotListeners() {
		l(change)
	}
}

func (c *Client) snapshotListeners() []backend.SessionListener {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	out := make([]backend.SessionListener, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.listeners[id])
	}
	return out
}

func (c *Client) current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) isRestored() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.restored
}
