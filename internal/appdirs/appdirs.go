package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aayushadhikari7/termgif/internal/identity"
)

const (
	// EnvConfigDir overrides where config.toml and templates are looked up.
	EnvConfigDir = "TERMGIF_CONFIG_DIR"
	// EnvStateDir overrides where logs and scratch files are written.
	EnvStateDir = "TERMGIF_STATE_DIR"
)

// ConfigDir returns the directory holding the global config file and
// user templates, creating it when missing.
func ConfigDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvConfigDir)); override != "" {
		return ensureDir(override)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return ensureDir(filepath.Join(dir, identity.AppSlug))
}

// StateDir returns the directory used for logs and scratch output.
func StateDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvStateDir)); override != "" {
		return ensureDir(override)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return ensureDir(filepath.Join(dir, identity.AppSlug))
}

// GlobalConfigPath returns the path of the global config file. The file
// itself may not exist yet.
func GlobalConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, identity.GlobalConfigFile), nil
}

func ensureDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("directory path is empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("create dir: %w", err)
		}
		return dir, nil
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}
	return dir, nil
}
