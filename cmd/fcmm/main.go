package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fcmm.dev/fcmm/internal/actions"
	"fcmm.dev/fcmm/internal/cli"
	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/output"
	"fcmm.dev/fcmm/internal/runtime"
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := config.LoadSettings("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	splog, err := output.NewSplogWithOptions(output.SplogOptions{
		Debug:   settings.Debug,
		LogFile: settings.LogFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = splog.Close() }()

	if err := settings.EnsureDirs(); err != nil {
		splog.Error("%v", err)
		return 3
	}

	rctx, err := runtime.NewContext(settings, splog)
	if err != nil {
		splog.Error("%v", err)
		return 3
	}

	rootCmd := cli.NewRootCmd(rctx, actions.NewRegistry())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			return exit.Code
		}
		splog.Error("%v", err)
		return 3
	}
	return 0
}
