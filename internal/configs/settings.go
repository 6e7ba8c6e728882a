package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names the per-user data and config folders.
const AppName = "trove"

// Settings holds the resolved locations trove works with. It is built once
// at startup and passed to whatever needs it.
type Settings struct {
	// DataRoot is the application data root; the repository lives in
	// DataRoot/text-repo.
	DataRoot string

	// ConfigDir holds config.toml.
	ConfigDir string
}

// DefaultSettings derives the locations from the environment:
// $XDG_DATA_HOME/trove (or ~/.local/share/trove) and the OS config dir.
func DefaultSettings() (Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("error getting home directory: %w", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Settings{}, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return Settings{
		DataRoot:  filepath.Join(dataDir, AppName),
		ConfigDir: filepath.Join(configDir, AppName),
	}, nil
}

// ConfigPath returns the path of the user config file.
func (s Settings) ConfigPath() string {
	return filepath.Join(s.ConfigDir, "config.toml")
}

// Resolve applies the user config file and then explicit overrides to base.
// An empty override leaves the lower-precedence value in place.
func Resolve(base Settings, dataRootOverride string) (Settings, *UserConfig, error) {
	cfg, err := LoadUserConfig(base)
	if err != nil {
		return Settings{}, nil, err
	}

	resolved := base
	if cfg.Repo.DataRoot != "" {
		resolved.DataRoot = cfg.Repo.DataRoot
	}
	if dataRootOverride != "" {
		resolved.DataRoot = dataRootOverride
	}
	return resolved, cfg, nil
}
