// Package credentials reads secrets for remote author sources from the OS keyring.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/zalando/go-keyring"
)

// Password returns the password stored for user under config.KeyringService.
// A missing entry is not an error: the source is then fetched without a password.
func Password(user string) (string, error) {
	if user == "" {
		return "", nil
	}
	p, err := keyring.Get(config.KeyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompDirectory,
			config.LogKeyUser, user,
			config.LogKeyError, err)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCredentialLookup, err)
	}
	return p, nil
}

// SetPassword stores the password for user, replacing any previous value.
func SetPassword(user, password string) error {
	if err := keyring.Set(config.KeyringService, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCredentialStore, err)
	}
	return nil
}
