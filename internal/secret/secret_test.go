package secret_test

import (
	"errors"
	"testing"

	"github.com/dukerupert/hermod/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_RawIdentity(t *testing.T) {
	store := secret.NewMemoryStore()
	require.NoError(t, secret.Register(store, "alice@example.com", "hunter2"))

	account, password, err := secret.Lookup(store, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account)
	assert.Equal(t, "hunter2", password)
}

func TestLookup_GmailFallback(t *testing.T) {
	store := secret.NewMemoryStore()
	require.NoError(t, secret.Register(store, "bob@gmail.com", "s3cret"))

	// Bare username has no stored entry; lookup should retry with the
	// gmail-suffixed account.
	account, password, err := secret.Lookup(store, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@gmail.com", account)
	assert.Equal(t, "s3cret", password)
}

func TestLookup_NoFallbackForFullAddress(t *testing.T) {
	store := secret.NewMemoryStore()
	require.NoError(t, secret.Register(store, "carol@example.com@gmail.com", "nope"))

	_, _, err := secret.Lookup(store, "carol@example.com")
	assert.True(t, errors.Is(err, secret.ErrNotFound))
}

func TestLookup_Missing(t *testing.T) {
	store := secret.NewMemoryStore()

	_, _, err := secret.Lookup(store, "nobody")
	assert.True(t, errors.Is(err, secret.ErrNotFound))
}
