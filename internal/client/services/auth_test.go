package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/client"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake auth client ----

type fakeAuth struct {
	SignInRet  *models.Session
	SignInErr  error
	SignUpRet  *models.Session
	SignUpErr  error
	SignOutErr error

	LastEmail    string
	LastPassword string
	SignOuts     int
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (*models.Session, error) {
	f.LastEmail, f.LastPassword = email, password
	return f.SignInRet, f.SignInErr
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*models.Session, error) {
	f.LastEmail, f.LastPassword = email, password
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeAuth) SignInWithIDToken(context.Context, string, string) (*models.Session, error) {
	return nil, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.SignOuts++
	return f.SignOutErr
}

func (f *fakeAuth) GetSession(context.Context) (*models.Session, error) { return nil, nil }
func (f *fakeAuth) OnSessionChange(backend.SessionListener) func()      { return func() {} }

type fakeLocal struct {
	Err   error
	Calls int
}

func (f *fakeLocal) ForgetIdentity(context.Context) error {
	f.Calls++
	return f.Err
}

// ---- tests ----

func TestSignInWithEmail_PassesCredentialsAndWipesPassword(t *testing.T) {
	fa := &fakeAuth{SignInRet: &models.Session{User: models.User{ID: "u1"}}}
	svc := NewAuthService(fa, &fakeLocal{})

	pw := []byte("secret")
	s, err := svc.SignInWithEmail(context.Background(), "  a@b.c ", pw)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID())
	assert.Equal(t, "a@b.c", fa.LastEmail)
	assert.Equal(t, "secret", fa.LastPassword)
	assert.Equal(t, make([]byte, 6), pw)
}

func TestSignInWithEmail_EmptyCredentials(t *testing.T) {
	fa := &fakeAuth{}
	svc := NewAuthService(fa, nil)

	_, err := svc.SignInWithEmail(context.Background(), "", []byte("x"))
	require.ErrorIs(t, err, backend.ErrValidation)
	_, err = svc.SignInWithEmail(context.Background(), "a@b.c", nil)
	require.ErrorIs(t, err, backend.ErrValidation)
	assert.Equal(t, "", fa.LastEmail)
}

func TestSignInWithEmail_BackendErrorWrapped(t *testing.T) {
	fa := &fakeAuth{SignInErr: &backend.APIError{Status: 400, Message: "Invalid login credentials", Kind: backend.ErrValidation}}
	svc := NewAuthService(fa, nil)

	_, err := svc.SignInWithEmail(context.Background(), "a@b.c", []byte("bad"))
	require.ErrorIs(t, err, backend.ErrValidation)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignUpWithEmail_VerificationPending(t *testing.T) {
	svc := NewAuthService(&fakeAuth{}, nil)

	s, err := svc.SignUpWithEmail(context.Background(), "a@b.c", []byte("pw"))
	require.ErrorIs(t, err, common.ErrVerificationPending)
	assert.Nil(t, s)
}

func TestSignUpWithEmail_SessionIssued(t *testing.T) {
	svc := NewAuthService(&fakeAuth{SignUpRet: &models.Session{User: models.User{ID: "new"}}}, nil)

	s, err := svc.SignUpWithEmail(context.Background(), "a@b.c", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "new", s.UserID())
}

func TestSignUpWithEmail_Failure(t *testing.T) {
	svc := NewAuthService(&fakeAuth{SignUpErr: backend.ErrUnavailable}, nil)

	_, err := svc.SignUpWithEmail(context.Background(), "a@b.c", []byte("pw"))
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.NotErrorIs(t, err, common.ErrVerificationPending)
}

func TestSignOut_Delegates(t *testing.T) {
	fa := &fakeAuth{}
	svc := NewAuthService(fa, nil)
	require.NoError(t, svc.SignOut(context.Background()))
	assert.Equal(t, 1, fa.SignOuts)
}

func TestForgetLocalIdentity_SignsOutAndForgets(t *testing.T) {
	fa, fl := &fakeAuth{}, &fakeLocal{}
	svc := NewAuthService(fa, fl)

	require.NoError(t, svc.ForgetLocalIdentity(context.Background()))
	assert.Equal(t, 1, fa.SignOuts)
	assert.Equal(t, 1, fl.Calls)
}

func TestForgetLocalIdentity_ForgetsEvenIfSignOutFails(t *testing.T) {
	fa := &fakeAuth{SignOutErr: backend.ErrUnavailable}
	fl := &fakeLocal{Err: errors.New("disk full")}
	svc := NewAuthService(fa, fl)

	err := svc.ForgetLocalIdentity(context.Background())
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, fl.Calls)
}

func TestForgetLocalIdentity_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := client.NewRepositories(db)
	require.NoError(t, repos.Metadata.Set(ctx, common.LegacyUserStorageKey, []byte(`{"email":"a@b.c"}`)))

	svc := NewAuthService(&fakeAuth{}, repos)
	require.NoError(t, svc.ForgetLocalIdentity(ctx))

	v, err := repos.Metadata.Get(ctx, common.LegacyUserStorageKey)
	require.NoError(t, err)
	assert.Nil(t, v)
}
