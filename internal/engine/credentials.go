package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-lich/internal/config"
	"github.com/zalando/go-keyring"
)

// LookupPassword returns the CardDAV password of user from the OS
// keyring, or "" when none is stored or the keyring is unavailable.
func LookupPassword(user string) string {
	if user == "" {
		return ""
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Warn(config.MsgPassFail,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyUser, user,
				config.LogKeyError, err,
			)
		}
		return ""
	}
	return pass
}

// StorePassword saves the CardDAV password of user in the OS keyring.
func StorePassword(user, pass string) error {
	if user == "" {
		return errors.New(config.ErrUserRequired)
	}
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	return nil
}

// DeletePassword removes the stored password of user. A missing entry
// is not an error.
func DeletePassword(user string) error {
	err := keyring.Delete(config.KeyringService, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	return nil
}
