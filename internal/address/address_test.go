package address_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/hermod/internal/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver() *address.Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return address.NewResolver("me@example.com", "Me Myself", logger)
}

func TestResolve_SingleString(t *testing.T) {
	set, err := newResolver().Resolve(address.Single("alice@example.com"), address.Field{}, address.Field{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, set.Recipients)
	assert.Equal(t, "alice@example.com", set.To)
}

func TestResolve_InputForms(t *testing.T) {
	tests := []struct {
		name       string
		to         address.Field
		recipients []string
		header     string
	}{
		{
			name:       "list keeps input order",
			to:         address.List("b@example.com", "a@example.com"),
			recipients: []string{"b@example.com", "a@example.com"},
			header:     "b@example.com; a@example.com",
		},
		{
			name: "aliased uses names for the header",
			to: address.Aliased(
				address.Alias{Address: "a@example.com", Name: "Alice"},
				address.Alias{Address: "b@example.com", Name: "Bob"},
			),
			recipients: []string{"a@example.com", "b@example.com"},
			header:     "Alice; Bob",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := newResolver().Resolve(tt.to, address.Field{}, address.Field{}, true, false)
			require.NoError(t, err)
			assert.Equal(t, tt.recipients, set.Recipients)
			assert.Equal(t, tt.header, set.To)
		})
	}
}

func TestResolve_SelfDefault(t *testing.T) {
	set, err := newResolver().Resolve(address.Field{}, address.Field{}, address.Field{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"me@example.com"}, set.Recipients)
	assert.Empty(t, set.To)
}

func TestResolve_PureCcBccBlast(t *testing.T) {
	set, err := newResolver().Resolve(
		address.Field{},
		address.Single("cc@example.com"),
		address.Single("bcc@example.com"),
		true, false,
	)
	require.NoError(t, err)
	// Recipient defaults to self; cc and bcc are appended.
	assert.Equal(t, []string{"me@example.com", "cc@example.com", "bcc@example.com"}, set.Recipients)
	assert.Equal(t, "Me Myself", set.To)
	assert.Equal(t, "cc@example.com", set.Cc)
	assert.Equal(t, "bcc@example.com", set.Bcc)
}

func TestResolve_CcOnlyStillDefaultsToSelf(t *testing.T) {
	set, err := newResolver().Resolve(address.Field{}, address.Single("cc@example.com"), address.Field{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"me@example.com", "cc@example.com"}, set.Recipients)
	assert.Empty(t, set.To)
	assert.Equal(t, "cc@example.com", set.Cc)
}

func TestResolve_InvalidDroppedWithWarning(t *testing.T) {
	set, err := newResolver().Resolve(address.List("alice@example.com", "not-an-address"), address.Field{}, address.Field{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, set.Recipients)
}

func TestResolve_InvalidStrictFails(t *testing.T) {
	_, err := newResolver().Resolve(address.List("alice@example.com", "not-an-address"), address.Field{}, address.Field{}, true, true)
	require.Error(t, err)
	var invalid *address.InvalidAddressError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "not-an-address", invalid.Address)
}

func TestResolve_ValidationDisabled(t *testing.T) {
	set, err := newResolver().Resolve(address.Single("not-an-address"), address.Field{}, address.Field{}, false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"not-an-address"}, set.Recipients)
}

func TestResolve_AllInvalidYieldsEmptySet(t *testing.T) {
	set, err := newResolver().Resolve(address.Single("nope"), address.Field{}, address.Field{}, true, false)
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestResolve_DuplicatesKept(t *testing.T) {
	set, err := newResolver().Resolve(address.List("a@example.com", "a@example.com"), address.Field{}, address.Field{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "a@example.com"}, set.Recipients)
}
