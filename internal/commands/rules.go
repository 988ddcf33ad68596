package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praveensiddu/rentledger/internal/model"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit an account's classification rules",
	}
	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesAddCommand())
	cmd.AddCommand(newRulesDeleteCommand())
	cmd.AddCommand(newRulesReorderCommand())
	cmd.AddCommand(newRulesDedupCommand())
	return cmd
}

func newRulesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <account>",
		Short: "List an account's rules in evaluation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}
			items, err := runner.Rules().List(acct.RulesPath(cfg.Year))
			if err != nil {
				return err
			}
			for _, r := range items {
				fmt.Printf("%3d  %-14s %-10s %-12s %s\n",
					r.Order, r.TransactionType, r.TaxCategory, target(r), r.Pattern)
			}
			return nil
		},
	}
}

func target(r model.Rule) string {
	switch {
	case r.Property != "":
		return r.Property
	case r.Group != "":
		return "group:" + r.Group
	case r.Company != "":
		return r.Company
	default:
		return "-"
	}
}

func newRulesAddCommand() *cobra.Command {
	var r model.Rule

	cmd := &cobra.Command{
		Use:   "add <account>",
		Short: "Add or replace a rule and re-classify the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}
			r.BankAccount = acct.Name

			saved, err := runner.Rules().Upsert(acct.RulesPath(cfg.Year), r)
			if err != nil {
				return err
			}
			if err := runner.RefreshAccount(acct.Name); err != nil {
				return err
			}
			fmt.Printf("Rule saved at order %d\n", saved.Order)
			return nil
		},
	}

	cmd.Flags().StringVar(&r.TransactionType, "type", "", "transaction type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&r.Pattern, "pattern", "", "pattern expression (required)")
	_ = cmd.MarkFlagRequired("pattern")
	cmd.Flags().StringVar(&r.TaxCategory, "tax-category", "", "tax category (required)")
	_ = cmd.MarkFlagRequired("tax-category")
	cmd.Flags().StringVar(&r.Property, "property", "", "target property")
	cmd.Flags().StringVar(&r.Group, "group", "", "target property group")
	cmd.Flags().StringVar(&r.Company, "company", "", "target company")
	cmd.Flags().StringVar(&r.OtherEntity, "other-entity", "", "free-form counterparty")
	cmd.Flags().IntVar(&r.Order, "order", 0, "insert position (default: append)")

	return cmd
}

func newRulesDeleteCommand() *cobra.Command {
	var r model.Rule

	cmd := &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete the rule matching the given fields and re-classify",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}
			r.BankAccount = acct.Name

			if err := runner.Rules().Delete(acct.RulesPath(cfg.Year), r); err != nil {
				return err
			}
			if err := runner.RefreshAccount(acct.Name); err != nil {
				return err
			}
			fmt.Println("Rule deleted")
			return nil
		},
	}

	cmd.Flags().StringVar(&r.TransactionType, "type", "", "transaction type (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&r.Pattern, "pattern", "", "pattern expression (required)")
	_ = cmd.MarkFlagRequired("pattern")
	cmd.Flags().StringVar(&r.TaxCategory, "tax-category", "", "tax category (required)")
	_ = cmd.MarkFlagRequired("tax-category")
	cmd.Flags().StringVar(&r.Property, "property", "", "target property")
	cmd.Flags().StringVar(&r.Group, "group", "", "target property group")
	cmd.Flags().StringVar(&r.Company, "company", "", "target company")
	cmd.Flags().StringVar(&r.OtherEntity, "other-entity", "", "free-form counterparty")

	return cmd
}

func newRulesReorderCommand() *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "reorder <account>",
		Short: "Move a rule to a new position and re-classify",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}
			if err := runner.Rules().Reorder(acct.RulesPath(cfg.Year), from, to); err != nil {
				return err
			}
			if err := runner.RefreshAccount(acct.Name); err != nil {
				return err
			}
			fmt.Printf("Moved rule %d to %d\n", from, to)
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "current order (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().IntVar(&to, "to", 0, "new order (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newRulesDedupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dedup <account>",
		Short: "Remove duplicate rule patterns, keeping the earliest order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ents, runner, _, err := setup()
			if err != nil {
				return err
			}
			acct, ok := ents.BankAccounts[args[0]]
			if !ok {
				return fmt.Errorf("unknown bank account %q", args[0])
			}
			removed, err := runner.Rules().Dedup(acct.RulesPath(cfg.Year))
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d duplicate rules\n", removed)
			return nil
		},
	}
}
