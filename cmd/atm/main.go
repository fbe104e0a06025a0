package main

import (
	"context"
	"fmt"
	"os"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/cli"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/bootstrap"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/config"
	"github.com/google/uuid"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so that deferred cleanup happens before os.Exit
func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return cli.ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration validation failed:\n%v\n", err)
		return cli.ExitFailure
	}

	container, err := bootstrap.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}
	defer func() {
		if err := container.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cleanup failed: %v\n", err)
		}
	}()

	operationID := uuid.NewString()
	ctx := coreport.WithOperationID(context.Background(), operationID)

	root := cli.NewRootCommand(container, cli.NewTerminalPrompter(os.Stdin, os.Stderr))
	if err := root.ExecuteContext(ctx); err != nil {
		code := cli.ExitCode(err)
		container.Logger().Debug("Command failed", map[string]any{
			"error":        err.Error(),
			"exit_code":    code,
			"operation_id": operationID,
		})
		cli.ReportError(os.Stderr, err)
		return code
	}
	return cli.ExitOK
}
