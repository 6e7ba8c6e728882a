package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// UserConfig is the per-user config.toml.
type UserConfig struct {
	Repo RepoConfig `toml:"repo"`
}

// RepoConfig holds defaults for repository commands.
type RepoConfig struct {
	// DataRoot overrides the default application data root.
	DataRoot string `toml:"data_root,omitempty"`

	// PasswordSource is one of prompt, keyring or env.
	PasswordSource string `toml:"password_source,omitempty"`
}

// LoadUserConfig loads config.toml. A missing file yields an empty config.
func LoadUserConfig(s Settings) (*UserConfig, error) {
	config := &UserConfig{}

	configPath := s.ConfigPath()
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	return config, nil
}

// SaveUserConfig writes config.toml.
func SaveUserConfig(s Settings, config *UserConfig) error {
	if err := SaveTOML(s.ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}
