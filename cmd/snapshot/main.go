package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"go.uber.org/zap"

	"github.com/temirov/snapshot/internal/cli"
	"github.com/temirov/snapshot/internal/services/clipboard"
	"github.com/temirov/snapshot/internal/utils"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// main is the entry point for the snapshot command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer func() { _ = loggerInstance.Sync() }()

	rootCommand := cli.NewRootCommand(cli.Dependencies{
		Logger: loggerInstance,
		Copier: clipboard.NewService(),
	})
	rootCommand.SetArgs(cli.NormalizeArguments(rootCommand, os.Args[1:]))

	executionError := fang.Execute(
		context.Background(),
		rootCommand,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithErrorHandler(func(_ io.Writer, _ fang.Styles, applicationExecutionError error) {
			loggerInstance.Error(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
		}),
	)
	if executionError != nil {
		_ = loggerInstance.Sync()
		os.Exit(1)
	}
}
