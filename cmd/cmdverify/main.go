package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/cmdverify/internal/domain"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli"
	"github.com/doeshing/cmdverify/internal/infrastructure/cli/commands"
)

func main() {
	ctx := context.Background()
	root := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrVerificationFailed) {
			printError(err)
		}
		os.Exit(1)
	}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	if cfgErr, ok := domain.AsConfigurationError(err); ok {
		for _, hint := range cfgErr.Hints {
			fmt.Fprintln(os.Stderr, "  hint:", hint)
		}
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("CMDVERIFY_DEBUG"), "1") || strings.EqualFold(os.Getenv("CMDVERIFY_DEBUG"), "true")
}
