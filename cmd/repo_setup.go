package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/trove/internal/configs"
	"github.com/PolarWolf314/trove/internal/ui"
	"github.com/PolarWolf314/trove/internal/workflows"
	"github.com/spf13/cobra"
)

var setupSaveDefaults bool

func init() {
	setupCmd.Flags().BoolVar(&setupSaveDefaults, "save", false, "remember --data-root and --password-source in config.toml")
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Initialize the repository and its password",
	Long: `Creates the repository folder and its salt, and makes sure the chosen
password source can produce a password.

With --password-source keyring and no stored password, you are asked for a
new password twice and it is saved to the OS keyring. Running setup again is
safe: an existing salt is never replaced.

Use --save to make the given --data-root and --password-source the defaults
for later commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting setup command")

		result, err := workflows.Setup(context.Background(), workflows.SetupOptions{
			RepoOptions: repoOptions(),
			Prompter:    prompter,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, failureMessage("Setup failed", err))
			return err
		}

		if result.StoredPassword {
			fmt.Println(ui.Success.Sprint(ui.MarkSuccess) + " Password saved to the OS keyring")
		}
		if result.CreatedConfig {
			fmt.Println(ui.Success.Sprint(ui.MarkSuccess) + " Repository created at " + ui.Path.Sprint(result.Folder))
		} else {
			fmt.Println(ui.Success.Sprint(ui.MarkSuccess) + " Repository already set up at " + ui.Path.Sprint(result.Folder))
		}
		if setupSaveDefaults {
			if err := saveDefaults(); err != nil {
				fmt.Println(ui.Warning.Sprint(ui.MarkWarning) + " Could not save defaults: " + err.Error())
			} else {
				fmt.Println(ui.Success.Sprint(ui.MarkSuccess) + " Saved defaults to " + ui.Path.Sprint(settings.ConfigPath()))
			}
		}
		fmt.Println(ui.Info.Sprint(ui.MarkHint) + " Add documents with " + ui.Code.Sprint("trove repo add -c <collection> <files>"))
		return nil
	},
}

// saveDefaults writes the explicitly given flags to the user config.
func saveDefaults() error {
	userConfig, err := configs.LoadUserConfig(settings)
	if err != nil {
		return err
	}
	if dataRoot != "" {
		abs, err := filepath.Abs(dataRoot)
		if err != nil {
			return err
		}
		userConfig.Repo.DataRoot = abs
	}
	if passwordSourceName != "" {
		userConfig.Repo.PasswordSource = passwordSourceName
	}
	Logger.Debugf("Saving defaults: %+v", userConfig.Repo)
	return configs.SaveUserConfig(settings, userConfig)
}
