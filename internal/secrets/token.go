package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "livesched"

var ErrNoAccount = errors.New("keyring account name is empty")

// GetFeedToken returns the bearer token stored for account. An empty account
// means the feeds are public and yields "" with no error.
func GetFeedToken(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", nil
	}
	tok, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

func SetFeedToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return ErrNoAccount
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteFeedToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return ErrNoAccount
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
