package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praveensiddu/rentledger/internal/rollup"
)

func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Recompute the property and company summaries from processed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, _, log, err := setup()
			if err != nil {
				return err
			}
			if err := rollup.NewEngine(cfg, ents, log).Recompute(); err != nil {
				return err
			}
			fmt.Println("Summaries recomputed")
			return nil
		},
	}
}
