// Package configs manages trove's locations and user configuration.
//
// Settings carries the application data root and the config directory. It is
// built once at startup (DefaultSettings, then Resolve) and passed explicitly
// to the code that needs it; nothing here is a process-wide global.
//
// The user config is TOML at <config-dir>/trove/config.toml:
//
//	[repo]
//	data_root = "/home/me/.local/share/trove"
//	password_source = "keyring"
//
// Precedence for the data root is: --data-root flag, then config.toml, then
// $XDG_DATA_HOME/trove (or ~/.local/share/trove).
package configs
