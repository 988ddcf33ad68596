// Package commands defines the CLI surface over the pipeline.
package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/praveensiddu/rentledger/internal/buildinfo"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/entities"
	"github.com/praveensiddu/rentledger/internal/logging"
	"github.com/praveensiddu/rentledger/internal/pipeline"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rentledger",
		Short:   "Rental accounting from bank statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newAddendumCommand())
	rootCmd.AddCommand(newSummaryCommand())

	return rootCmd
}

// setup loads the environment config and the year's entity files, the shared
// preamble of every subcommand.
func setup() (*config.Config, *entities.Set, *pipeline.Runner, zerolog.Logger, error) {
	log := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, log, err
	}
	ents, err := entities.Load(cfg.EntitiesDir(), log)
	if err != nil {
		return nil, nil, nil, log, err
	}
	return cfg, ents, pipeline.NewRunner(cfg, ents, log), log, nil
}
