package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praveensiddu/rentledger/internal/addendum"
)

func newAddendumCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addendum",
		Short: "Record transactions that have no bank statement line",
	}
	cmd.AddCommand(newAddendumAddCommand())
	return cmd
}

func newAddendumAddCommand() *cobra.Command {
	var date, description, amount string

	cmd := &cobra.Command{
		Use:   "add <account>",
		Short: "Append a manual transaction and re-classify the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, log, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}

			store := addendum.NewStore(log)
			row, err := store.Append(acct.AddendumPath(cfg.Year), acct.Name, date, description, amount)
			if err != nil {
				return err
			}
			if err := runner.RefreshAccount(acct.Name); err != nil {
				return err
			}
			fmt.Printf("Added transaction %s\n", row.TrID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&description, "description", "", "transaction description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount")

	return cmd
}
