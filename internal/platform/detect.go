package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName        = "vidtranslate"
	configFileName = "config.yaml"
)

func DefaultConfigPathFor(goos, homeDir, xdgConfigHome string) (string, error) {
	dir, err := defaultConfigDirFor(goos, homeDir, xdgConfigHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// ResolveConfigPath returns override when set, otherwise the per-user default.
func ResolveConfigPath(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultConfigPathFor(runtime.GOOS, homeDir, os.Getenv("XDG_CONFIG_HOME"))
}

func defaultConfigDirFor(goos, homeDir, xdgConfigHome string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgConfigHome != "" {
			return filepath.Join(xdgConfigHome, appName), nil
		}
		return filepath.Join(homeDir, ".config", appName), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
