package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend/gotrue"
	"github.com/dmitrijs2005/gymrecord/internal/client/backend/objectstore"
	"github.com/dmitrijs2005/gymrecord/internal/client/backend/postgrest"
	"github.com/dmitrijs2005/gymrecord/internal/client/client"
	"github.com/dmitrijs2005/gymrecord/internal/client/config"
	"github.com/dmitrijs2005/gymrecord/internal/client/i18n"
	"github.com/dmitrijs2005/gymrecord/internal/client/identity"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/client/oauth"
	"github.com/dmitrijs2005/gymrecord/internal/client/profile"
	"github.com/dmitrijs2005/gymrecord/internal/client/services"
	"github.com/dmitrijs2005/gymrecord/internal/client/session"
	"github.com/dmitrijs2005/gymrecord/internal/filex"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
)

// sessionView is the read side of the session store used by commands.
type sessionView interface {
	Current() *models.Session
	Ready() bool
}

type profileStore interface {
	Profile() *models.Profile
	Load(ctx context.Context) (*models.Profile, error)
	Update(ctx context.Context, u models.ProfileUpdate) (*models.Profile, error)
	UploadAvatar(ctx context.Context, image []byte) (*models.Profile, error)
}

type translator interface {
	Initialize(ctx context.Context, lang string) error
	Reload(ctx context.Context) error
	Get(key string) string
	Lang() string
}

type handshaker interface {
	Enabled() bool
	BeginHandshake(ctx context.Context) (identity.Result, error)
}

type App struct {
	config       *config.Config
	log          logging.Logger
	authService  services.AuthService
	reference    services.ReferenceService
	bridge       handshaker
	sessions     sessionView
	profiles     profileStore
	translations translator
	reader       *bufio.Reader
	out          io.Writer

	// set by NewApp only
	db      *sql.DB
	auth    *gotrue.Client
	store   *session.Store
	profile *profile.Cache
}

// NewApp opens the local store and wires the backend clients, the session
// store, the profile and translation caches and the Google sign-in bridge.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	repos := client.NewRepositories(db)

	auth := gotrue.New(c.ProjectURL, c.AnonKey, repos.Metadata, log.With("component", "auth"))
	data := postgrest.New(c.ProjectURL, c.AnonKey, auth.AccessToken)

	storage, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:      c.StorageEndpoint,
		Region:        c.StorageRegion,
		AccessKey:     c.StorageAccessKey,
		SecretKey:     c.StorageSecretKey,
		PublicBaseURL: c.ProjectURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		db:     db,
		auth:   auth,
	}

	a.store = session.NewStore(auth, log.With("component", "session"))
	a.profile = profile.New(data, storage, log.With("component", "profile"), profile.WithBucket(c.AvatarBucket))
	a.profile.Attach(a.store)

	provider := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
	}, a.showConsentPage, log.With("component", "oauth"))

	a.sessions = a.store
	a.profiles = a.profile
	a.translations = i18n.New(data, c.DefaultLang, log.With("component", "i18n"))
	a.bridge = identity.NewBridge(auth, provider, identity.NewMetadataLegacyStore(repos.Metadata), a, log.With("component", "identity"))
	a.authService = services.NewAuthService(auth, repos)
	a.reference = services.NewReferenceService(data)

	return a, nil
}

// Run restores the session, loads translations, starts the token refresher
// and blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	a.start(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) start(ctx context.Context) {
	if a.store != nil {
		if err := a.store.Start(ctx); err != nil {
			a.log.Warn(ctx, "failed to restore session", "error", err)
		}
	}

	if err := a.translations.Initialize(ctx, a.config.DefaultLang); err != nil {
		a.log.Warn(ctx, "failed to load translations", "lang", a.config.DefaultLang, "error", err)
		printlnFn("Translations unavailable, showing message keys.")
	}

	if s := a.sessions.Current(); s != nil {
		printlnFn(a.t("Welcome back,"), s.User.Email)
	}

	if a.auth != nil {
		go a.auth.StartAutoRefresh(ctx, a.config.RefreshCheckInterval)
	}
}

// Close releases the session store, the profile subscription and the
// local database.
func (a *App) Close() {
	if a.profile != nil {
		a.profile.Detach()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "failed to close database", "error", err)
		}
	}
}

// Notify prints a message raised outside of a command's own output.
func (a *App) Notify(msg string) {
	printlnFn(msg)
}

func (a *App) showConsentPage(url string) error {
	printlnFn(a.t("Open this link in your browser to continue:"))
	printlnFn(url)
	return nil
}

func (a *App) isSignedIn() bool {
	return a.sessions.Current() != nil
}

func (a *App) status() string {
	s := a.sessions.Current()
	if s == nil {
		return a.t("signed out")
	}
	return s.User.Email
}

// t looks a message up in the active language. Unknown keys are shown as is.
func (a *App) t(key string) string {
	if a.translations == nil {
		return key
	}
	return a.translations.Get(key)
}
