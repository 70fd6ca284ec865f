// Package cli implements fieldctl, an operator tool that drives the same
// services as the HTTP API against a device's store.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"fieldsync/internal/app"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Backend string
	DBPath  string
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Opener builds the services a command runs against. The caller owns the
// returned App and closes it when the command finishes.
type Opener func(ctx context.Context, opts *RootOptions) (*app.App, error)

// NewRootCommand creates the fieldctl command tree.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fieldctl",
		Short: "Inspect and operate a fieldsync device store",
		Long: `fieldctl reads and writes the records, profiles and language cache of a
fieldsync store, and can trigger a sync run or a language download.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend override (sqlite|memory|redis|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "sqlite database path override")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	r := &runner{opts: opts, open: open}
	cmd.AddCommand(newRecordsCommand(r))
	cmd.AddCommand(newSummaryCommand(r))
	cmd.AddCommand(newSyncCommand(r))
	cmd.AddCommand(newLangCommand(r))
	cmd.AddCommand(newProfileCommand(r))

	return cmd
}

// runner opens the App for one command and hands it a formatter.
type runner struct {
	opts *RootOptions
	open Opener
}

func (r *runner) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{
		Format:    r.opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   r.opts.Verbose,
	}

	a, err := r.open(ctx, r.opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			out.VerboseLog("close store: %v", err)
		}
	}()

	if err := fn(ctx, a, out); err != nil {
		return out.Fail(err)
	}
	return nil
}
