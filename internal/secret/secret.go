package secret

import (
	"errors"
	"strings"
)

// Service is the account namespace hermod uses in the underlying store.
const Service = "mail-sender"

// ErrNotFound is returned when no credential exists for an account.
var ErrNotFound = errors.New("secret: credential not found")

// Store defines the interface for credential storage.
// Implementations can use the OS keyring, a file vault, or an in-memory
// map for tests.
type Store interface {
	// GetPassword returns the stored password for account under service.
	// Returns ErrNotFound when no entry exists.
	GetPassword(service, account string) (string, error)

	// SetPassword stores the password for account under service,
	// overwriting any existing entry.
	SetPassword(service, account, password string) error
}

// Lookup resolves a password for user, trying the raw identity first and,
// when the identity has no domain part, falling back to the gmail-suffixed
// form. It returns the resolved account name alongside the password so the
// caller knows which identity matched.
func Lookup(store Store, user string) (account, password string, err error) {
	password, err = store.GetPassword(Service, user)
	if err == nil {
		return user, password, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	if strings.Contains(user, "@") {
		return "", "", ErrNotFound
	}
	account = user + "@gmail.com"
	password, err = store.GetPassword(Service, account)
	if err != nil {
		return "", "", err
	}
	return account, password, nil
}

// Register stores a credential for later lookup under the hermod service.
func Register(store Store, account, password string) error {
	return store.SetPassword(Service, account, password)
}
