package cli

import (
	"fmt"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	"github.com/spf13/cobra"
)

func newDepositCommand(services Services) *cobra.Command {
	return &cobra.Command{
		Use:         "deposit <amount>",
		Short:       "Add money to the logged-in account",
		Example:     "  atm deposit 100\n  atm deposit 12.50",
		Args:        exactArgs(1),
		Annotations: map[string]string{annotationAmount: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := services.Transactions(cmd.Context())
			if err != nil {
				return err
			}
			row, err := engine.Deposit(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deposited %s\n", row.FormattedAmount())
			return printTransactions(out, row)
		},
	}
}

func newWithdrawCommand(services Services) *cobra.Command {
	return &cobra.Command{
		Use:         "withdraw <amount>",
		Short:       "Take money out of the logged-in account",
		Example:     "  atm withdraw 40",
		Args:        exactArgs(1),
		Annotations: map[string]string{annotationAmount: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := services.Transactions(cmd.Context())
			if err != nil {
				return err
			}
			row, err := engine.Withdraw(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Withdrew %s\n", row.FormattedAmount())
			return printTransactions(out, row)
		},
	}
}

func newTransferCommand(services Services) *cobra.Command {
	var target uint64

	cmd := &cobra.Command{
		Use:         "transfer <amount> --to <account-id>",
		Short:       "Move money to another account",
		Example:     "  atm transfer 60 --to 2",
		Args:        exactArgs(1),
		Annotations: map[string]string{annotationAmount: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := services.Transactions(cmd.Context())
			if err != nil {
				return err
			}
			result, err := engine.Transfer(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transferred %s to %s\n", result.Outgoing.FormattedAmount(), counterparty(result))
			return printTransactions(out, result.Outgoing, result.Incoming)
		},
	}
	cmd.Flags().Uint64Var(&target, "to", 0, "id of the receiving account")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func counterparty(result *entity.TransferResult) string {
	if result.ReceiverName == "" {
		return fmt.Sprintf("account %d", result.Outgoing.Target())
	}
	return fmt.Sprintf("%s (account %d)", result.ReceiverName, result.Outgoing.Target())
}
