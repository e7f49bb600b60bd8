// Package identity turns a federated Google sign-in into a backend session.
//
// BeginHandshake walks an ordered chain and stops at the first step that
// yields an identity:
//
//  1. a backend session that is already present;
//  2. the identity cached locally by older client versions;
//  3. an interactive provider handshake whose identity token is exchanged
//     for a backend session, after which the legacy record is removed.
//
// The bridge never writes the session itself; the session store learns about
// the new session from the auth client's change events.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateIdle State = iota
	StateAwaitingProviderResponse
	StateExchangingToken
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingProviderResponse:
		return "awaiting provider response"
	case StateExchangingToken:
		return "exchanging token"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Outcome int

const (
	// OutcomeUnavailable: the provider is not configured, nothing was tried.
	OutcomeUnavailable Outcome = iota
	OutcomeExistingSession
	OutcomeLegacyUser
	OutcomeSignedIn
	OutcomeCancelled
)

type Result struct {
	Outcome Outcome
	Session *models.Session
	Legacy  *models.LegacyLocalUser
}

// Provider performs the interactive handshake and yields an identity token.
type Provider interface {
	Configured() bool
	Authenticate(ctx context.Context) (string, error)
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(msg string)
}

type Bridge struct {
	auth     backend.AuthClient
	provider Provider
	legacy   LegacyStore
	notifier Notifier
	log      logging.Logger

	group singleflight.Group

	mu    sync.Mutex
	state State
}

func NewBridge(auth backend.AuthClient, provider Provider, legacy LegacyStore, notifier Notifier, log logging.Logger) *Bridge {
	return &Bridge{auth: auth, provider: provider, legacy: legacy, notifier: notifier, log: log}
}

// Enabled reports whether the interactive provider is configured.
func (b *Bridge) Enabled() bool {
	return b.provider != nil && b.provider.Configured()
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BeginHandshake runs the chain. Calls made while one is in flight join it
// and get its result.
func (b *Bridge) BeginHandshake(ctx context.Context) (Result, error) {
	v, err, shared := b.group.Do("handshake", func() (any, error) {
		return b.run(ctx)
	})
	if shared {
		b.log.Debug(ctx, "joined in-flight handshake")
	}
	res, _ := v.(Result)
	return res, err
}

func (b *Bridge) run(ctx context.Context) (Result, error) {
	s, err := b.auth.GetSession(ctx)
	if err != nil {
		b.log.Warn(ctx, "failed to read current session", "error", err)
	}
	if s != nil {
		b.setState(StateDone)
		return Result{Outcome: OutcomeExistingSession, Session: s}, nil
	}

	if b.legacy != nil {
		u, err := b.legacy.Load(ctx)
		if err != nil {
			b.log.Warn(ctx, "failed to read legacy identity", "error", err)
		}
		if u != nil {
			b.setState(StateDone)
			return Result{Outcome: OutcomeLegacyUser, Legacy: u}, nil
		}
	}

	if !b.Enabled() {
		return Result{Outcome: OutcomeUnavailable}, nil
	}

	b.setState(StateAwaitingProviderResponse)
	idToken, err := b.provider.Authenticate(ctx)
	if errors.Is(err, common.ErrCancelled) {
		b.setState(StateIdle)
		return Result{Outcome: OutcomeCancelled}, nil
	}
	if err != nil {
		b.setState(StateIdle)
		b.notify("Google sign-in failed: " + common.UserMessage(err))
		return Result{}, fmt.Errorf("provider handshake: %w", err)
	}

	b.setState(StateExchangingToken)
	sess, err := b.auth.SignInWithIDToken(ctx, common.GoogleProvider, idToken)
	if err != nil {
		b.setState(StateIdle)
		b.notify(exchangeMessage(err))
		return Result{}, fmt.Errorf("exchange identity token: %w", err)
	}

	if b.legacy != nil {
		if err := b.legacy.Delete(ctx); err != nil {
			b.log.Warn(ctx, "failed to remove legacy identity", "error", err)
		}
	}

	b.setState(StateDone)
	b.log.Info(ctx, "signed in with google", "user_id", sess.UserID())
	return Result{Outcome: OutcomeSignedIn, Session: sess}, nil
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

func (b *Bridge) notify(msg string) {
	if b.notifier != nil {
		b.notifier.Notify(msg)
	}
}

func exchangeMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, backend.ErrUnavailable) {
		return "Cannot reach the server. Please try again later."
	}
	return common.UserMessage(err)
}
