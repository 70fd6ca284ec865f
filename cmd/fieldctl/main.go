package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fieldsync/internal/app"
	"fieldsync/internal/cli"
	"fieldsync/internal/platform/config"
	"fieldsync/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(openFromEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		if cli.GetExitCode(err) == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}

// openFromEnv reads the server's environment, then applies flag overrides.
// Logs go to the configured file or are dropped so they never mix with
// command output.
func openFromEnv(ctx context.Context, opts *cli.RootOptions) (*app.App, error) {
	cfg := config.FromEnv()
	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
	}
	if opts.DBPath != "" {
		cfg.Storage.SQLitePath = opts.DBPath
	}
	log := logger.Discard()
	if cfg.Log.File != "" {
		log = logger.New(cfg.Log)
	}
	return app.Build(ctx, cfg, log)
}
