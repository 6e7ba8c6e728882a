package cmd

import (
	"fmt"

	"github.com/PolarWolf314/trove/internal/configs"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	logger "github.com/PolarWolf314/trove/internal/logging"
	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/utils"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose            bool
	debug              bool
	dataRoot           string
	passwordSourceName string
	Logger             logger.Logger

	settings configs.Settings
	source   repo.PasswordSource

	// secretStore backs the keyring password source. Tests swap it for an
	// in-memory store.
	secretStore repo.SecretStore = repo.NewKeyringStore()

	// prompter asks for new passwords during setup.
	prompter repo.Prompter = repo.TerminalPrompter

	RepoCmd = &cobra.Command{
		Use:   "repo",
		Short: "Manage the encrypted document repository",
		Long: `Provides setup, health checks, the audit log, and adding, reading,
deleting and listing of encrypted documents.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing repo command with verbose=%t, debug=%t", verbose, debug)
			return loadRepoContext()
		},
	}
)

func init() {
	RepoCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RepoCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RepoCmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "application data root (default $XDG_DATA_HOME/trove)")
	RepoCmd.PersistentFlags().StringVar(&passwordSourceName, "password-source", "", "where the password comes from: prompt, keyring or env")

	RepoCmd.AddCommand(setupCmd)
	RepoCmd.AddCommand(checkCmd)
	RepoCmd.AddCommand(addCmd)
	RepoCmd.AddCommand(readCmd)
	RepoCmd.AddCommand(deleteCmd)
	RepoCmd.AddCommand(listCmd)
	RepoCmd.AddCommand(logCmd)
}

// loadRepoContext resolves settings and the password source from defaults,
// config.toml and flags, in increasing precedence.
func loadRepoContext() error {
	base, err := configs.DefaultSettings()
	if err != nil {
		return err
	}

	resolved, userConfig, err := configs.Resolve(base, dataRoot)
	if err != nil {
		return err
	}
	settings = resolved
	Logger.Debugf("Data root: %s", settings.DataRoot)

	name := passwordSourceName
	if name == "" {
		name = userConfig.Repo.PasswordSource
	}
	source, err = repo.ParsePasswordSource(name, secretStore)
	if err != nil {
		return fmt.Errorf("invalid password source: %w", err)
	}
	Logger.Debugf("Password source: %s", source)
	return nil
}

// repoOptions returns the options shared by every repository workflow.
func repoOptions() workflows.RepoOptions {
	return workflows.RepoOptions{
		Settings: settings,
		Source:   source,
		Logger:   Logger,
	}
}

// Helper functions for testing

// GetRepoCmd returns the RepoCmd for testing.
func GetRepoCmd() *cobra.Command {
	return RepoCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	dataRoot = ""
	passwordSourceName = ""
	settings = configs.Settings{}
	source = nil
	resetCheckCommandState()
	resetAddCommandState()
	resetReadCommandState()
	resetListCommandState()
	resetFlags(RepoCmd)
}

// resetFlags restores every flag under c to its default so a command tree
// can be executed repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}

// SetSecretStore replaces the keyring backend for testing.
func SetSecretStore(s repo.SecretStore) {
	secretStore = s
}

// SetPrompter replaces the password prompter for testing.
func SetPrompter(p repo.Prompter) {
	prompter = p
}

// unlockSource asks an interactive source for its password up front so the
// prompt never competes with a spinner.
func unlockSource() error {
	if _, ok := source.(repo.Prompt); !ok {
		return nil
	}
	if !utils.IsTerminal() && !utils.IsTTYAvailable() {
		return fmt.Errorf("no terminal to prompt on: %w", kerrors.ErrNoPassword)
	}
	password, err := source.Password()
	if err != nil {
		return err
	}
	source = repo.PassIn{Value: password}
	return nil
}
