// Package cli is the cobra command surface of the atm binary.
package cli

import (
	"context"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
	"github.com/spf13/cobra"
)

// Services hands out the collaborators a command needs. Implementations
// build them on first use so commands such as logout never open the database.
type Services interface {
	Accounts(ctx context.Context) (usecase.AccountUseCase, error)
	Auth(ctx context.Context) (usecase.AuthUseCase, error)
	Transactions(ctx context.Context) (usecase.TransactionUseCase, error)
	Sessions() session.Store
	Migrator(ctx context.Context) (Migrator, error)
	ProbeServer(ctx context.Context) (Runner, error)
	Logger() coreport.Logger
}

// Migrator applies the database schema
type Migrator interface {
	MigrateAll(ctx context.Context) (previousVersion string, err error)
	GetCurrentVersion(ctx context.Context) (string, error)
}

// Runner blocks until ctx is cancelled
type Runner interface {
	Run(ctx context.Context) error
}

// annotationAmount marks commands whose first argument is a money amount
const annotationAmount = "atm/amount-arg"

// NewRootCommand builds the atm command tree
func NewRootCommand(services Services, prompter Prompter) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "atm",
		Short:         "Simulated ATM backed by PostgreSQL",
		Long:          "atm keeps a session between invocations: log in once, then deposit, withdraw, transfer and check your balance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				services.Logger().SetLevel(coreport.LogLevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs to stderr")
	root.SetFlagErrorFunc(flagError)

	root.AddCommand(
		newRegisterCommand(services, prompter),
		newLoginCommand(services, prompter),
		newLogoutCommand(services),
		newCheckBalanceCommand(services),
		newDepositCommand(services),
		newWithdrawCommand(services),
		newTransferCommand(services),
		newServeCommand(services),
		newMigrateCommand(services),
	)
	return root
}
