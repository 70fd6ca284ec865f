package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldsync/internal/app"
	"fieldsync/internal/records/models"
)

func newRecordsCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List, add and count module records",
	}
	cmd.AddCommand(newRecordsListCommand(r))
	cmd.AddCommand(newRecordsAddCommand(r))
	cmd.AddCommand(newRecordsNextIDCommand(r))
	cmd.AddCommand(newRecordsCountCommand(r))
	return cmd
}

func newRecordsListCommand(r *runner) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list <module>",
		Short: "List a module's records in creation order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				module, err := models.ParseModule(args[0])
				if err != nil {
					return err
				}
				records, err := a.Records.ListAll(ctx, module)
				if err != nil {
					return err
				}
				if status != "" {
					want, err := models.ParseStatus(status)
					if err != nil {
						return err
					}
					records = slices.DeleteFunc(records, func(rec *models.Record) bool { return rec.Status != want })
				}
				return out.Success(records, func(w io.Writer) { writeRecords(w, records) })
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show records with this status (PENDING|SYNCED)")
	return cmd
}

func newRecordsAddCommand(r *runner) *cobra.Command {
	var fields map[string]string
	cmd := &cobra.Command{
		Use:   "add <module>",
		Short: "Append a PENDING record built from --field pairs",
		Example: `  fieldctl records add childHealth --field childName=Meena --field age=2 \
    --field gender=F --field village=Melur --field parentName=Lakshmi --field phone=9876543210`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				module, err := models.ParseModule(args[0])
				if err != nil {
					return err
				}
				rec, err := a.Records.AppendFields(ctx, module, fields)
				if err != nil {
					return err
				}
				return out.Success(rec, func(w io.Writer) {
					fmt.Fprintf(w, "saved %s (%s)\n", rec.ClientID, rec.Status)
				})
			})
		},
	}
	cmd.Flags().StringToStringVar(&fields, "field", nil, "record field as key=value (repeatable)")
	return cmd
}

func newRecordsNextIDCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id <module>",
		Short: "Preview the identifier the next saved record will get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				module, err := models.ParseModule(args[0])
				if err != nil {
					return err
				}
				id, err := a.Records.NextClientID(ctx, module)
				if err != nil {
					return err
				}
				return out.Success(map[string]string{"module": module.String(), "clientId": id},
					func(w io.Writer) { fmt.Fprintln(w, id) })
			})
		},
	}
}

func newRecordsCountCommand(r *runner) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "count <module>",
		Short: "Count a module's records with a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				module, err := models.ParseModule(args[0])
				if err != nil {
					return err
				}
				st, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				n, err := a.Records.CountByStatus(ctx, module, st)
				if err != nil {
					return err
				}
				return out.Success(map[string]any{"module": module, "status": st, "count": n},
					func(w io.Writer) { fmt.Fprintln(w, n) })
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.StatusPending), "status to count (PENDING|SYNCED)")
	return cmd
}

func newSummaryCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total and pending record counts per module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				summary, err := a.Records.Summary(ctx)
				if err != nil {
					return err
				}
				return out.Success(summary, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "MODULE\tTOTAL\tPENDING")
					for _, ms := range summary.Modules {
						fmt.Fprintf(tw, "%s\t%d\t%d\n", ms.Module, ms.Total, ms.Pending)
					}
					fmt.Fprintf(tw, "all\t%d\t%d\n", summary.Total, summary.Pending)
					_ = tw.Flush()
				})
			})
		},
	}
}

func writeRecords(w io.Writer, records []*models.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIENT ID\tSTATUS\tCREATED\tFIELDS")
	for _, rec := range records {
		fields := rec.Fields()
		keys := slices.Sorted(maps.Keys(fields))
		var line string
		for i, k := range keys {
			if i > 0 {
				line += " "
			}
			line += k + "=" + fields[k]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.ClientID, rec.Status, rec.CreatedAt.Format("2006-01-02 15:04"), line)
	}
	_ = tw.Flush()
}
