package session

import "errors"

var (
	// ErrConnectionClosed is returned when composing or sending is
	// attempted on a closed session. The caller must log in again.
	ErrConnectionClosed = errors.New("session is closed, login required")

	// ErrNoUser is returned when no user was supplied and the identity
	// file could not provide one.
	ErrNoUser = errors.New("no user configured")

	// ErrNoPassword is returned when the password resolution chain
	// (explicit argument, secret store, prompt) produced nothing.
	ErrNoPassword = errors.New("no password available")
)
