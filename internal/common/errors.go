package common

import "errors"

var (
	// ErrNoSession is returned by operations that need an authenticated user.
	ErrNoSession = errors.New("no active session")

	// ErrVerificationPending is returned by sign-up when the account was
	// created but no session was issued until the e-mail is confirmed.
	ErrVerificationPending = errors.New("please check your inbox for email verification")

	// ErrCancelled is returned when the user abandons an interactive sign-in.
	ErrCancelled = errors.New("sign-in cancelled")
)
