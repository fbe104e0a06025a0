package cli

import (
	"fmt"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/spf13/cobra"
)

func newRegisterCommand(services Services, prompter Prompter) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with a zero balance",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pin, err := prompter.ReadSecret("Choose a 6-digit PIN: ")
			if err != nil {
				return err
			}
			confirm, err := prompter.ReadSecret("Confirm PIN: ")
			if err != nil {
				return err
			}
			if pin != confirm {
				return fmt.Errorf("%w: the two entries do not match", errs.ErrInvalidPIN)
			}

			accounts, err := services.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			view, err := accounts.Register(cmd.Context(), name, pin)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account %q registered. Log in with: atm login --name %s\n", view.Name, view.Name)
			return printAccount(out, view)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "login name for the new account")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCommand(services Services, prompter Prompter) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session for an account",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pin, err := prompter.ReadSecret("PIN: ")
			if err != nil {
				return err
			}

			auth, err := services.Auth(cmd.Context())
			if err != nil {
				return err
			}
			view, err := auth.Login(cmd.Context(), name, pin)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (account %d)\n", view.Name, view.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "account login name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCommand(services Services) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := services.Sessions().Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newCheckBalanceCommand(services Services) *cobra.Command {
	return &cobra.Command{
		Use:     "check-balance",
		Aliases: []string{"balance"},
		Short:   "Show the balance of the logged-in account",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := services.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			view, err := accounts.CheckBalance(cmd.Context())
			if err != nil {
				return err
			}
			return printAccount(cmd.OutOrStdout(), view)
		},
	}
}
