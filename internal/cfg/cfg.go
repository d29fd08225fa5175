// Package cfg provides configuration and command-line interface setup for coursarr.
package cfg

import (
	"context"
	"fmt"
	"os"
	"strings"

	"coursarr/internal/app"
	"coursarr/internal/contracts"
	"coursarr/internal/domain/keys"
	"coursarr/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "coursarr",
	Short: "Coursarr is a resumable course content downloader.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Level = viper.GetInt(keys.DebugLevel)

		// Setup flags from config file
		if viper.IsSet(keys.ConfigFile) {
			configFile := viper.GetString(keys.ConfigFile)

			cInfo, err := os.Stat(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed check for config file path: %v\n", err)
				os.Exit(1)
			} else if cInfo.IsDir() {
				fmt.Fprintf(os.Stderr, "config file entered is a directory, should be a file\n")
				os.Exit(1)
			}

			if configFile != "" {
				// load and normalize keys from any Viper-supported config file
				if err := loadConfigFile(configFile); err != nil {
					fmt.Fprintf(os.Stderr, "failed loading config file: %v\n", err)
					os.Exit(1)
				}
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Lookup("help").Changed {
			return nil
		}
		viper.Set(keys.Execute, true)
		return nil
	},
}

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, hs contracts.HistoryStore) error {

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("_", "-"))

	if err := initProgramFlags(rootCmd); err != nil {
		return err
	}
	if err := initDownloadFlags(rootCmd); err != nil {
		return err
	}
	if err := initToolFlags(rootCmd); err != nil {
		return err
	}

	rootCmd.AddCommand(initVerifyCmd(ctx, hs))

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

// initVerifyCmd builds the subcommand that checks recorded downloads against
// the filesystem.
func initVerifyCmd(ctx context.Context, hs contracts.HistoryStore) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify that recorded downloads still exist on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := viper.GetString(keys.PlatformName)
			if platform == "" {
				return fmt.Errorf("no platform set, use --%s", keys.PlatformName)
			}

			report, err := app.VerifyHistory(ctx, hs, platform)
			if err != nil {
				return err
			}
			if len(report.Missing) > 0 {
				return fmt.Errorf("%d of %d recorded file(s) missing or empty", len(report.Missing), report.Checked)
			}
			return nil
		},
	}
}

// loadConfigFile reads a Viper-supported config file into the global viper.
func loadConfigFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	logging.I("Loaded config file %s", path)
	return nil
}
