package secret

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// KeyringStore is a Store backed by the operating system keyring.
type KeyringStore struct {
	fileDir string
}

// NewKeyringStore creates a keyring-backed store. fileDir is used by the
// file fallback backend on systems without a native keyring.
func NewKeyringStore(fileDir string) *KeyringStore {
	if fileDir == "" {
		fileDir = "~/.config/hermod/credentials"
	}
	return &KeyringStore{fileDir: fileDir}
}

func (k *KeyringStore) open(service string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  k.fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("hermod-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// GetPassword retrieves the password stored for account under service.
func (k *KeyringStore) GetPassword(service, account string) (string, error) {
	ring, err := k.open(service)
	if err != nil {
		return "", err
	}
	item, err := ring.Get(account)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting credential %q: %w", account, err)
	}
	return string(item.Data), nil
}

// SetPassword stores the password for account under service.
func (k *KeyringStore) SetPassword(service, account, password string) error {
	ring, err := k.open(service)
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:  account,
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", account, err)
	}
	return nil
}
