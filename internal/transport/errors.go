package transport

import "fmt"

// AuthError reports rejected credentials. It is fatal and never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("smtp authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// TransientError reports a mid-send disconnect or other connection-level
// failure. Sends hitting it are retried with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("smtp connection lost: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError reports that the server refused the message outright.
// It is surfaced to the caller and never retried.
type PermanentError struct {
	Code int
	Err  error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("smtp server rejected message (code %d): %v", e.Code, e.Err)
}
func (e *PermanentError) Unwrap() error { return e.Err }
