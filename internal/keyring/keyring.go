package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/tmeadows/sitebudget/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetConnectionString retrieves the database connection string from the OS keyring.
// Returns ErrNotFound if no credentials are stored.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the database connection string in the OS keyring.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.DefaultKeyringUser, connStr)
}

// DeleteConnectionString removes the database connection string from the OS keyring.
func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser)
}

// GetBridgeSecret retrieves the shared secret the bridge server requires
// on every request. Returns ErrNotFound if none has been generated yet.
func GetBridgeSecret() (string, error) {
	return get(constants.BridgeKeyringUser)
}

// SetBridgeSecret stores the bridge shared secret in the OS keyring.
func SetBridgeSecret(secret string) error {
	if secret == "" {
		return errors.New("bridge secret cannot be empty")
	}
	return set(constants.BridgeKeyringUser, secret)
}

// DeleteBridgeSecret removes the bridge shared secret from the OS keyring.
func DeleteBridgeSecret() error {
	return del(constants.BridgeKeyringUser)
}

func get(user string) (string, error) {
	val, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return val, nil
}

func set(user, val string) error {
	if err := keyring.Set(constants.AppName, user, val); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func del(user string) error {
	err := keyring.Delete(constants.AppName, user)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring responded; it is available but empty.
	return err == nil || err == keyring.ErrNotFound
}
