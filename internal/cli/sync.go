package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fieldsync/internal/app"
	dErrors "fieldsync/pkg/domain-errors"
)

func newSyncCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push every PENDING record to the remote endpoint",
		Long: `Runs one sync: each module's PENDING records are pushed in batches and the
accepted ones are marked SYNCED. Exits 1 when any record is still pending.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			err := r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				report := a.Sync.Run(ctx)
				failed = len(report.Failed)
				return out.Success(report, func(w io.Writer) {
					fmt.Fprintf(w, "run %s: %d attempted, %d synced, %d failed\n",
						report.RunID, report.Attempted, report.Succeeded, len(report.Failed))
					for _, f := range report.Failed {
						id := f.ClientID
						if id == "" {
							id = "(module)"
						}
						fmt.Fprintf(w, "  %s %s: %s\n", f.Module, id, f.Reason)
					}
				})
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return WrapExitError(ExitFailure, "sync incomplete",
					dErrors.New(dErrors.CodeNetwork, fmt.Sprintf("%d record(s) still pending", failed)))
			}
			return nil
		},
	}
}
