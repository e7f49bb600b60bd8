// Package services contains application services for the GymRecord client.
// This file defines the account service: e-mail sign-in and sign-up, sign-out
// and removal of locally persisted identity data.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/common"
)

// AuthService defines account operations for the CLI.
//
// Contract:
//   - SignInWithEmail: authenticate with e-mail and password.
//   - SignUpWithEmail: create an account; common.ErrVerificationPending when
//     the account awaits e-mail confirmation.
//   - SignOut: end the current session.
//   - ForgetLocalIdentity: sign out and drop every locally persisted identity.
//
// Passwords are wiped after use. Sessions reach the rest of the client through
// the auth client's change events, not through these return values.
type AuthService interface {
	SignInWithEmail(ctx context.Context, email string, password []byte) (*models.Session, error)
	SignUpWithEmail(ctx context.Context, email string, password []byte) (*models.Session, error)
	SignOut(ctx context.Context) error
	ForgetLocalIdentity(ctx context.Context) error
}

// LocalIdentity removes identity records kept on this device.
type LocalIdentity interface {
	ForgetIdentity(ctx context.Context) error
}

type authService struct {
	auth  backend.AuthClient
	local LocalIdentity
}

func NewAuthService(auth backend.AuthClient, local LocalIdentity) AuthService {
	return &authService{auth: auth, local: local}
}

func (a *authService) SignInWithEmail(ctx context.Context, email string, password []byte) (*models.Session, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	s, err := a.auth.SignInWithPassword(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("sign in error: %w", err)
	}
	return s, nil
}

func (a *authService) SignUpWithEmail(ctx context.Context, email string, password []byte) (*models.Session, error) {
	defer common.WipeByteArray(password)

	email = strings.TrimSpace(email)
	if err := checkCredentials(email, password); err != nil {
		return nil, err
	}

	s, err := a.auth.SignUp(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("sign up error: %w", err)
	}
	if s == nil {
		return nil, common.ErrVerificationPending
	}
	return s, nil
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.auth.SignOut(ctx)
}

// ForgetLocalIdentity removes local identity data even when the remote
// sign-out fails; the sign-out error is still reported.
func (a *authService) ForgetLocalIdentity(ctx context.Context) error {
	signOutErr := a.auth.SignOut(ctx)
	if signOutErr != nil {
		signOutErr = fmt.Errorf("sign out error: %w", signOutErr)
	}

	var localErr error
	if a.local != nil {
		if err := a.local.ForgetIdentity(ctx); err != nil {
			localErr = fmt.Errorf("forget local identity error: %w", err)
		}
	}
	return errors.Join(signOutErr, localErr)
}

func checkCredentials(email string, password []byte) error {
	if email == "" || len(password) == 0 {
		return fmt.Errorf("%w: email and password are required", backend.ErrValidation)
	}
	return nil
}
