package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Normalize, classify and summarize every bank account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			if err := runner.Run(); err != nil {
				return err
			}
			fmt.Printf("Processed %d bank accounts\n", len(ents.BankAccounts))
			return nil
		},
	}
}
