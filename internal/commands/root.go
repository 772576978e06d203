// Package commands wires the CLI surface. Commands parse flags and files,
// call into the client/extractor/transformer packages, and let fatal errors
// propagate so the process exits non-zero.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flexquery-dev/flexquery/internal/buildinfo"
	"github.com/flexquery-dev/flexquery/internal/config"
	"github.com/flexquery-dev/flexquery/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "flexquery",
		Short:   "Download and transform Flex Query statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file path")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logging.Init(cfg.LogLevel)
		return cfg, nil
	}

	rootCmd.AddCommand(newDownloadCommand(loadConfig))
	rootCmd.AddCommand(newFilterCommand(loadConfig))
	rootCmd.AddCommand(newTransformCommand(loadConfig))
	rootCmd.AddCommand(newListCommand(loadConfig))

	return rootCmd
}

// configLoader resolves the effective config for a command invocation.
type configLoader func() (*config.Config, error)
