package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/identity"
	"github.com/dmitrijs2005/gymrecord/internal/common"
)

// googleSignInTimeout bounds the wait for the browser consent page.
const googleSignInTimeout = 5 * time.Minute

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an e-mail and password and creates an account.
// An account awaiting e-mail confirmation is reported, not treated as an error.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, a.t("Enter email"), os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.SignUpWithEmail(ctx, email, password)
	if errors.Is(err, common.ErrVerificationPending) {
		printlnFn(a.t("Check your inbox to confirm your e-mail address, then log in."))
		return nil
	}
	if err != nil {
		return err
	}

	printlnFn(a.t("Account created. Signed in as"), s.User.Email)
	return nil
}

// Login prompts for credentials and signs in with e-mail and password.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, a.t("Enter email"), os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.SignInWithEmail(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn(a.t("Signed in as"), s.User.Email)
	return nil
}

// GoogleLogin runs the Google sign-in handshake. Failures have already been
// shown to the user by the bridge, so they are only logged here.
func (a *App) GoogleLogin(ctx context.Context) error {
	if !a.bridge.Enabled() {
		printlnFn(a.t("Google sign-in is not configured."))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, googleSignInTimeout)
	defer cancel()

	res, err := a.bridge.BeginHandshake(ctx)
	if err != nil {
		a.log.Debug(ctx, "google sign-in failed", "error", err)
		return nil
	}

	switch res.Outcome {
	case identity.OutcomeExistingSession:
		printlnFn(a.t("Already signed in as"), res.Session.User.Email)
	case identity.OutcomeLegacyUser:
		printlnFn(a.t("Using the Google account saved on this device:"), res.Legacy.Email)
	case identity.OutcomeSignedIn:
		printlnFn(a.t("Signed in as"), res.Session.User.Email)
	case identity.OutcomeCancelled:
		printlnFn(a.t("Sign-in cancelled."))
	case identity.OutcomeUnavailable:
		printlnFn(a.t("Google sign-in is not configured."))
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isSignedIn() {
		printlnFn(a.t("Not signed in."))
		return nil
	}
	if err := a.authService.SignOut(ctx); err != nil {
		return err
	}
	printlnFn(a.t("Signed out."))
	return nil
}

// Forget signs out and removes every identity record kept on this device.
func (a *App) Forget(ctx context.Context) error {
	if err := a.authService.ForgetLocalIdentity(ctx); err != nil {
		return err
	}
	printlnFn(a.t("Local identity removed."))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s := a.sessions.Current()
	if s == nil {
		if !a.sessions.Ready() {
			printlnFn(a.t("Session is still loading."))
			return nil
		}
		printlnFn(a.t("Not signed in."))
		return nil
	}

	printlnFn(a.t("Email:"), s.User.Email)
	printlnFn(a.t("User ID:"), s.User.ID)
	if !s.ExpiresAt.IsZero() {
		printlnFn(a.t("Session expires:"), s.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}
