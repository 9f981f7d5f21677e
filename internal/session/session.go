package session

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukerupert/hermod/internal/address"
	"github.com/dukerupert/hermod/internal/compose"
	"github.com/dukerupert/hermod/internal/content"
	"github.com/dukerupert/hermod/internal/secret"
	"github.com/dukerupert/hermod/internal/transport"
)

const (
	defaultAttempts    = 3
	defaultBackoffUnit = 3 * time.Second
	identityFileName   = ".hermod"
)

// PromptFunc asks the user for a password interactively. save requests
// that the credential be written back to the secret store.
type PromptFunc func(user string) (password string, save bool, err error)

// Options configures Login.
type Options struct {
	Host      string
	Port      int
	StartTLS  bool
	TLSConfig *tls.Config
	LocalName string // EHLO name; empty means localhost

	// User is the account to authenticate as. Empty means read it from
	// IdentityFile. DisplayName is the alias shown in From/To headers.
	User         string
	DisplayName  string
	IdentityFile string // defaults to ~/.hermod

	// Password resolution chain: Password if set, then Secrets lookup,
	// then Prompt.
	Password string
	Secrets  secret.Store
	Prompt   PromptFunc

	// Fetcher and DetectHTML feed content classification. A nil Fetcher
	// gets a default HTTP client; DetectHTML nil means the default
	// markup detector. Set NoHTMLDetection to classify all literal
	// content as text/plain.
	Fetcher         content.Fetcher
	DetectHTML      content.DetectorFunc
	NoHTMLDetection bool

	// Dialer overrides the SMTP transport factory, for tests.
	Dialer transport.Dialer

	Logger *slog.Logger

	// Retry policy for transient disconnects. Zero values mean 3
	// attempts with a 3 second backoff unit.
	Attempts    int
	BackoffUnit time.Duration
}

// Session is one authenticated SMTP session: a live transport handle, the
// resolved credentials needed to re-establish it, the content cache, and
// the queue of messages whose retries were exhausted.
//
// A Session is confined to a single goroutine. Callers needing parallel
// throughput open separate sessions. Close the session explicitly
// (typically with defer) — there is no finalizer.
type Session struct {
	dialer      transport.Dialer
	tr          transport.Transport
	host        string
	port        int
	startTLS    bool
	tlsConfig   *tls.Config
	localName   string
	user        string
	displayName string
	password    string
	closed      bool
	unsent      []unsentMail
	resolver    *address.Resolver
	composer    *compose.Composer
	logger      *slog.Logger
	attempts    int
	backoffUnit time.Duration
	sleep       func(time.Duration)
	sent        int
}

type unsentMail struct {
	recipients []string
	message    []byte
}

// Login resolves credentials, opens the transport, negotiates STARTTLS
// when requested (ehlo, starttls, ehlo again), and authenticates.
func Login(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	user, err := resolveUser(opts)
	if err != nil {
		return nil, err
	}
	displayName := opts.DisplayName
	if displayName == "" {
		displayName = user
	}

	user, password, err := resolvePassword(opts, user, logger)
	if err != nil {
		return nil, err
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &transport.SMTPDialer{Host: opts.Host, Port: opts.Port, TLSConfig: opts.TLSConfig}
	}

	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	backoffUnit := opts.BackoffUnit
	if backoffUnit <= 0 {
		backoffUnit = defaultBackoffUnit
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = content.NewHTTPFetcher(0)
	}
	detect := opts.DetectHTML
	if detect == nil && !opts.NoHTMLDetection {
		detect = content.DetectHTML
	}
	classifier := content.NewClassifier(fetcher, detect, logger)

	s := &Session{
		dialer:      dialer,
		host:        opts.Host,
		port:        opts.Port,
		startTLS:    opts.StartTLS,
		tlsConfig:   opts.TLSConfig,
		localName:   opts.LocalName,
		user:        user,
		displayName: displayName,
		password:    password,
		resolver:    address.NewResolver(user, displayName, logger),
		composer:    compose.NewComposer(classifier, user, displayName, logger),
		logger:      logger,
		attempts:    attempts,
		backoffUnit: backoffUnit,
		sleep:       time.Sleep,
	}
	if err := s.connect(); err != nil {
		return nil, err
	}
	logger.Info("connected to smtp relay", "host", s.host, "port", s.port, "user", s.user)
	return s, nil
}

// resolveUser returns the configured user, falling back to the identity
// dotfile when none was supplied.
func resolveUser(opts Options) (string, error) {
	if opts.User != "" {
		return opts.User, nil
	}
	path := opts.IdentityFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoUser, err)
		}
		path = filepath.Join(home, identityFileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading identity file %s: %v", ErrNoUser, path, err)
	}
	user := strings.TrimSpace(string(data))
	if user == "" {
		return "", fmt.Errorf("%w: identity file %s is empty", ErrNoUser, path)
	}
	return user, nil
}

// resolvePassword runs the credential chain: explicit password, secret
// store (raw identity, then gmail-suffixed), interactive prompt with
// optional save-back. It returns the possibly canonicalized user.
func resolvePassword(opts Options, user string, logger *slog.Logger) (string, string, error) {
	if opts.Password != "" {
		return user, opts.Password, nil
	}
	if opts.Secrets != nil {
		account, password, err := secret.Lookup(opts.Secrets, user)
		if err == nil {
			return account, password, nil
		}
		if !errors.Is(err, secret.ErrNotFound) {
			return "", "", err
		}
		if !strings.Contains(user, "@") {
			user += "@gmail.com"
		}
	}
	if opts.Prompt != nil {
		password, save, err := opts.Prompt(user)
		if err != nil {
			return "", "", err
		}
		if save && opts.Secrets != nil {
			if err := secret.Register(opts.Secrets, user, password); err != nil {
				logger.Warn("saving credential to secret store failed", "user", user, "error", err)
			}
		}
		return user, password, nil
	}
	return "", "", fmt.Errorf("%w for %s", ErrNoPassword, user)
}

// connect establishes and authenticates a fresh transport.
func (s *Session) connect() error {
	tr, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	if err := tr.Hello(s.localName); err != nil {
		tr.Quit()
		return fmt.Errorf("ehlo failed: %w", err)
	}
	if s.startTLS {
		if err := tr.StartTLS(s.tlsConfig); err != nil {
			tr.Quit()
			return fmt.Errorf("starttls failed: %w", err)
		}
		if err := tr.Hello(s.localName); err != nil {
			tr.Quit()
			return fmt.Errorf("ehlo after starttls failed: %w", err)
		}
	}
	if err := tr.Auth(s.user, s.password); err != nil {
		tr.Quit()
		return err
	}
	s.tr = tr
	return nil
}

// User returns the authenticated identity.
func (s *Session) User() string { return s.user }

// Sent returns the number of messages delivered over this session.
func (s *Session) Sent() int { return s.sent }

// UnsentCount returns the number of queued messages awaiting resend.
func (s *Session) UnsentCount() int { return len(s.unsent) }

// SendAllowed reports whether the session can still compose and send.
func (s *Session) SendAllowed() bool { return !s.closed }

// Close marks the session closed and releases the transport. Closing an
// already-closed session is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.tr != nil {
		err = s.tr.Quit()
		s.tr = nil
	}
	s.logger.Info("closed smtp session", "host", s.host, "port", s.port, "user", s.user)
	return err
}
