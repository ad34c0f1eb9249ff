package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the per-application XDG directories.
const AppName = "mclaude-statusline"

// GetXDGDataDir returns the XDG data directory for mclaude-statusline.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/mclaude-statusline
func GetXDGDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// GetXDGStateDir returns the directory for logs, honoring XDG_STATE_HOME.
func GetXDGStateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

// GetXDGCacheDir returns the directory for downloaded model catalogs,
// honoring XDG_CACHE_HOME.
func GetXDGCacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(envVar string, fallback ...string) (string, error) {
	if base := os.Getenv(envVar); base != "" {
		return filepath.Join(base, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	parts := append([]string{homeDir}, fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}
