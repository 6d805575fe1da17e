package credentials_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/tartampluch/go-birthday-web/internal/credentials"
	"github.com/zalando/go-keyring"
)

func TestPassword(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, credentials.SetPassword("librarian", "s3cret"))

	p, err := credentials.Password("librarian")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", p)
}

func TestPassword_MissingIsEmpty(t *testing.T) {
	keyring.MockInit()

	p, err := credentials.Password("nobody")
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = credentials.Password("")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestPassword_BackendFailure(t *testing.T) {
	backendErr := errors.New("dbus unavailable")
	keyring.MockInitWithError(backendErr)

	_, err := credentials.Password("librarian")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Contains(t, err.Error(), config.ErrCredentialLookup)
}

func TestSetPassword_BackendFailure(t *testing.T) {
	backendErr := errors.New("keychain locked")
	keyring.MockInitWithError(backendErr)

	err := credentials.SetPassword("librarian", "s3cret")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Contains(t, err.Error(), config.ErrCredentialStore)
}
