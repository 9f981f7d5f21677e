package transport

import "crypto/tls"

// Transport is one live SMTP connection. It is not safe for concurrent
// use; a session issues one command at a time.
type Transport interface {
	// Hello sends EHLO with the given local name (empty means localhost).
	Hello(localName string) error

	// StartTLS upgrades the connection. A nil config uses the dialer's
	// default for the target host.
	StartTLS(cfg *tls.Config) error

	// Auth authenticates the connection. Rejected credentials come back
	// as an *AuthError.
	Auth(user, password string) error

	// SendMail transmits a serialized message to the recipients. Failures
	// are classified as *TransientError (mid-send disconnect, retryable)
	// or *PermanentError (server refused the message).
	SendMail(from string, recipients []string, msg []byte) error

	// Quit closes the connection with the server.
	Quit() error
}

// Dialer opens fresh transports to a fixed SMTP endpoint. Sessions redial
// through it when a transient disconnect forces a reconnect.
type Dialer interface {
	Dial() (Transport, error)
}
