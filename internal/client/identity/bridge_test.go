package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	Current *models.Session

	ExchangeErr     error
	ExchangeRelease chan struct{}
	exchanges       atomic.Int32

	mu           sync.Mutex
	LastProvider string
	LastIDToken  string
}

func (f *fakeAuth) SignInWithPassword(context.Context, string, string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeAuth) SignUp(context.Context, string, string) (*models.Session, error) { return nil, nil }
func (f *fakeAuth) SignOut(context.Context) error                                   { return nil }
func (f *fakeAuth) GetSession(context.Context) (*models.Session, error)             { return f.Current, nil }
func (f *fakeAuth) OnSessionChange(backend.SessionListener) func()                  { return func() {} }

func (f *fakeAuth) SignInWithIDToken(_ context.Context, provider, idToken string) (*models.Session, error) {
	f.exchanges.Add(1)
	f.mu.Lock()
	f.LastProvider, f.LastIDToken = provider, idToken
	f.mu.Unlock()
	if f.ExchangeRelease != nil {
		<-f.ExchangeRelease
	}
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return &models.Session{AccessToken: "at", User: models.User{ID: "g-user"}}, nil
}

type fakeProvider struct {
	Enabled bool
	Token   string
	Err     error
	Release chan struct{}
	calls   atomic.Int32
}

func (p *fakeProvider) Configured() bool { return p.Enabled }

func (p *fakeProvider) Authenticate(ctx context.Context) (string, error) {
	p.calls.Add(1)
	if p.Release != nil {
		<-p.Release
	}
	return p.Token, p.Err
}

type fakeLegacy struct {
	User    *models.LegacyLocalUser
	LoadErr error
	deletes atomic.Int32
}

func (l *fakeLegacy) Load(context.Context) (*models.LegacyLocalUser, error) { return l.User, l.LoadErr }
func (l *fakeLegacy) Delete(context.Context) error {
	l.deletes.Add(1)
	return nil
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *captureNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *captureNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func newBridge(auth *fakeAuth, p *fakeProvider, l *fakeLegacy) (*Bridge, *captureNotifier) {
	n := &captureNotifier{}
	var ls LegacyStore
	if l != nil {
		ls = l
	}
	return NewBridge(auth, p, ls, n, logging.NewDiscard()), n
}

func TestBeginHandshake_ReusesExistingSession(t *testing.T) {
	auth := &fakeAuth{Current: &models.Session{User: models.User{ID: "u1"}}}
	p := &fakeProvider{Enabled: true, Token: "tok"}
	b, _ := newBridge(auth, p, &fakeLegacy{})

	res, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeExistingSession, res.Outcome)
	assert.Equal(t, "u1", res.Session.UserID())
	assert.Zero(t, p.calls.Load())
	assert.Zero(t, auth.exchanges.Load())
	assert.Equal(t, StateDone, b.State())
}

func TestBeginHandshake_ReusesLegacyIdentity(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Token: "tok"}
	legacy := &fakeLegacy{User: &models.LegacyLocalUser{Email: "old@x.y", Name: "Old"}}
	b, _ := newBridge(auth, p, legacy)

	res, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeLegacyUser, res.Outcome)
	assert.Equal(t, "old@x.y", res.Legacy.Email)
	assert.Zero(t, p.calls.Load())
	assert.Zero(t, legacy.deletes.Load())
}

func TestBeginHandshake_DisabledProvider(t *testing.T) {
	auth := &fakeAuth{}
	b, n := newBridge(auth, &fakeProvider{Enabled: false}, nil)

	assert.False(t, b.Enabled())
	res, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.Equal(t, StateIdle, b.State())
	assert.Empty(t, n.messages())
}

func TestBeginHandshake_ExchangesTokenAndDropsLegacyRecord(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Token: "google-id-token"}
	legacy := &fakeLegacy{LoadErr: errors.New("corrupt record")}
	b, n := newBridge(auth, p, legacy)

	res, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSignedIn, res.Outcome)
	assert.Equal(t, "g-user", res.Session.UserID())
	assert.Equal(t, common.GoogleProvider, auth.LastProvider)
	assert.Equal(t, "google-id-token", auth.LastIDToken)
	assert.Equal(t, int32(1), legacy.deletes.Load())
	assert.Equal(t, StateDone, b.State())
	assert.Empty(t, n.messages())
}

func TestBeginHandshake_CancelReturnsToIdleQuietly(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Err: common.ErrCancelled}
	b, n := newBridge(auth, p, nil)

	res, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.Equal(t, StateIdle, b.State())
	assert.Zero(t, auth.exchanges.Load())
	assert.Empty(t, n.messages())
}

func TestBeginHandshake_ProviderFailureNotifies(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Err: errors.New("listener failed")}
	b, n := newBridge(auth, p, nil)

	_, err := b.BeginHandshake(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, []string{"Google sign-in failed: listener failed"}, n.messages())
}

func TestBeginHandshake_ExchangeFailureNotifiesBackendMessage(t *testing.T) {
	auth := &fakeAuth{ExchangeErr: &backend.APIError{
		Status: 400, Message: "Bad ID token", Kind: backend.ErrValidation,
	}}
	p := &fakeProvider{Enabled: true, Token: "tok"}
	legacy := &fakeLegacy{}
	b, n := newBridge(auth, p, legacy)

	_, err := b.BeginHandshake(context.Background())
	require.ErrorIs(t, err, backend.ErrValidation)
	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, []string{"Bad ID token"}, n.messages())
	assert.Zero(t, legacy.deletes.Load())
}

func TestBeginHandshake_ExchangeUnavailable(t *testing.T) {
	auth := &fakeAuth{ExchangeErr: backend.ErrUnavailable}
	b, n := newBridge(auth, &fakeProvider{Enabled: true, Token: "tok"}, nil)

	_, err := b.BeginHandshake(context.Background())
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Equal(t, []string{"Cannot reach the server. Please try again later."}, n.messages())
}

func TestBeginHandshake_DoubleTapExchangesOnce(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Token: "tok", Release: make(chan struct{})}
	b, _ := newBridge(auth, p, nil)

	results := make(chan Result, 2)
	go func() {
		r, err := b.BeginHandshake(context.Background())
		assert.NoError(t, err)
		results <- r
	}()
	require.Eventually(t, func() bool { return b.State() == StateAwaitingProviderResponse }, time.Second, time.Millisecond)

	go func() {
		r, err := b.BeginHandshake(context.Background())
		assert.NoError(t, err)
		results <- r
	}()
	// let the second call reach the shared flight before releasing the first
	time.Sleep(20 * time.Millisecond)
	close(p.Release)

	r1, r2 := <-results, <-results
	assert.Equal(t, OutcomeSignedIn, r1.Outcome)
	assert.Equal(t, OutcomeSignedIn, r2.Outcome)
	assert.Equal(t, int32(1), auth.exchanges.Load())
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestBeginHandshake_StateWhileExchanging(t *testing.T) {
	auth := &fakeAuth{ExchangeRelease: make(chan struct{})}
	b, _ := newBridge(auth, &fakeProvider{Enabled: true, Token: "tok"}, nil)

	done := make(chan struct{})
	go func() {
		_, _ = b.BeginHandshake(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return b.State() == StateExchangingToken }, time.Second, time.Millisecond)
	close(auth.ExchangeRelease)
	<-done
	assert.Equal(t, StateDone, b.State())
}

func TestBeginHandshake_DoneAllowsAnotherHandshake(t *testing.T) {
	auth := &fakeAuth{}
	p := &fakeProvider{Enabled: true, Token: "tok"}
	b, _ := newBridge(auth, p, nil)

	_, err := b.BeginHandshake(context.Background())
	require.NoError(t, err)
	_, err = b.BeginHandshake(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), auth.exchanges.Load())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "exchanging token", StateExchangingToken.String())
	assert.Equal(t, "State(9)", State(9).String())
}
