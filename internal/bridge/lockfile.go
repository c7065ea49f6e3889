package bridge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmeadows/sitebudget/internal/constants"
)

// WriteLockfile advertises the running bridge to browser-side clients:
// port, owning pid, and the shared secret, pipe-separated on one line.
func WriteLockfile(configDir string, port int, pid int, secret string) (string, error) {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	path := filepath.Join(configDir, constants.BridgeLockfileName)
	content := fmt.Sprintf("%d|%d|%s", port, pid, secret)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write bridge lockfile: %w", err)
	}
	return path, nil
}

// RemoveLockfile deletes the lockfile; a missing file is not an error.
func RemoveLockfile(configDir string) error {
	path := filepath.Join(configDir, constants.BridgeLockfileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
