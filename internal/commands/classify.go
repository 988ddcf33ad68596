package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [account]",
		Short: "Re-classify one bank account, or all, and refresh the summaries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ents, runner, _, err := setup()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if err := runner.RefreshAccount(args[0]); err != nil {
					return err
				}
				fmt.Printf("Classified %s\n", args[0])
				return nil
			}

			if err := runner.Run(); err != nil {
				return err
			}
			fmt.Printf("Classified %d bank accounts\n", len(ents.BankAccounts))
			return nil
		},
	}
}
