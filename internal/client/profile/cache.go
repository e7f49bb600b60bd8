// Package profile keeps the signed-in user's profile, derived from the
// current session and the profiles table.
//
// Every session change bumps a generation counter. A load whose generation
// moved on publishes only if the session still belongs to the same user, so
// a profile fetched for one user is never exposed after another took over.
// Loads are also numbered as they start; an older load never replaces the
// result of a newer one.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/session"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"github.com/gabriel-vasile/mimetype"
)

const (
	profilesTable  = "profiles"
	profileColumns = "username,avatar_url,gender"
	DefaultBucket  = "avatars"
	reloadTimeout  = 15 * time.Second
)

// ErrSuperseded is returned by a load whose session was replaced while it
// was in flight. Its result has been dropped.
var ErrSuperseded = errors.New("profile load superseded by a session change")

// SessionSource is the subset of the session store the cache follows.
type SessionSource interface {
	Current() *models.Session
	Subscribe(listener session.Listener) func()
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithBucket(bucket string) Option {
	return func(c *Cache) { c.bucket = bucket }
}

type Cache struct {
	data    backend.DataClient
	storage backend.ObjectStorage
	log     logging.Logger
	now     func() time.Time
	bucket  string

	mu sync.Mutex
	// gen counts session changes; seq numbers loads in start order and
	// published is the seq of the load whose result is cached.
	gen       uint64
	seq       uint64
	published uint64
	session   *models.Session
	profile   *models.Profile
	detach    func()
}

func New(data backend.DataClient, storage backend.ObjectStorage, log logging.Logger, opts ...Option) *Cache {
	c := &Cache{
		data:    data,
		storage: storage,
		log:     log,
		now:     time.Now,
		bucket:  DefaultBucket,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Attach follows src: the cache binds to its current session and reloads on
// every change. A previous attachment is dropped.
func (c *Cache) Attach(src SessionSource) {
	c.Detach()
	c.bind(src.Current())
	detach := src.Subscribe(c.onSessionChange)

	c.mu.Lock()
	c.detach = detach
	c.mu.Unlock()
}

func (c *Cache) Detach() {
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Profile returns a copy of the cached profile, nil when nothing is loaded
// for the current session.
func (c *Cache) Profile() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil || c.session == nil || c.profile.ID != c.session.UserID() {
		return nil
	}
	return c.profile.Clone()
}

// Load fetches the profile of the bound session's user. Without a session
// the cache is cleared and the backend is not called. A load that finishes
// after a later-started one already published returns the newer profile.
func (c *Cache) Load(ctx context.Context) (*models.Profile, error) {
	c.mu.Lock()
	c.seq++
	gen, seq, sess := c.gen, c.seq, c.session
	if sess == nil {
		c.profile = nil
		c.published = seq
		c.mu.Unlock()
		return nil, nil
	}
	c.mu.Unlock()

	p, err := c.fetch(ctx, sess)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a session change for the same user (token refresh) leaves the row valid
	if c.gen != gen && c.session.UserID() != sess.UserID() {
		c.log.Debug(ctx, "discarding superseded profile", "user_id", sess.UserID())
		return nil, ErrSuperseded
	}
	if seq < c.published {
		c.log.Debug(ctx, "discarding outdated profile", "user_id", sess.UserID())
		return c.profile.Clone(), nil
	}
	c.profile = p
	c.published = seq
	return p.Clone(), nil
}

// Update writes the provided fields of u for the bound user, then reloads.
func (c *Cache) Update(ctx context.Context, u models.ProfileUpdate) (*models.Profile, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrValidation, err)
	}

	sess := c.currentSession()
	if sess == nil {
		return nil, common.ErrNoSession
	}

	row := profileUpsert{
		ID:        sess.UserID(),
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Gender:    u.Gender,
		UpdatedAt: c.now().UTC(),
	}
	if err := c.data.Upsert(ctx, profilesTable, row); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return c.Load(ctx)
}

// UploadAvatar stores image as the user's new avatar and points the profile
// at its public URL. Any failure leaves the profile as it was.
func (c *Cache) UploadAvatar(ctx context.Context, image []byte) (*models.Profile, error) {
	sess := c.currentSession()
	if sess == nil {
		return nil, common.ErrNoSession
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", backend.ErrValidation)
	}

	mt := mimetype.Detect(image)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", backend.ErrValidation, mt.String())
	}

	name := fmt.Sprintf("%s/%d%s", sess.UserID(), c.now().UnixMilli(), mt.Extension())
	contentType, _, _ := strings.Cut(mt.String(), ";")
	opts := backend.UploadOptions{ContentType: contentType, Upsert: true}
	if err := c.storage.Upload(ctx, c.bucket, name, image, opts); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	url := c.storage.PublicURL(c.bucket, name)
	return c.Update(ctx, models.ProfileUpdate{AvatarURL: &url})
}

func (c *Cache) onSessionChange(change models.SessionChange) {
	c.bind(change.Session)

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if _, err := c.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.log.Warn(ctx, "failed to reload profile", "event", change.Event, "error", err)
	}
}

// bind switches the cache to s. A change of user drops the cached profile.
func (c *Cache) bind(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if s.UserID() != c.session.UserID() {
		c.profile = nil
	}
	c.session = s
}

func (c *Cache) currentSession() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Cache) fetch(ctx context.Context, sess *models.Session) (*models.Profile, error) {
	p := &models.Profile{ID: sess.UserID()}
	if sess.User.Email != "" {
		email := sess.User.Email
		p.Email = &email
	}

	var row models.ProfileRow
	err := c.data.SelectOne(ctx, profilesTable, profileColumns,
		[]backend.Eq{{Column: "id", Value: sess.UserID()}}, &row)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p.Username = row.Username
	p.AvatarURL = row.AvatarURL
	p.Gender = row.Gender
	return p, nil
}

type profileUpsert struct {
	ID        string         `json:"id"`
	Username  *string        `json:"username,omitempty"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	Gender    *models.Gender `json:"gender,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
