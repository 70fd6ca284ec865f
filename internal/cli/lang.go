package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldsync/internal/app"
	"fieldsync/internal/translation/models"
)

func newLangCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Manage the cached UI translations",
	}
	cmd.AddCommand(newLangListCommand(r))
	cmd.AddCommand(newLangShowCommand(r))
	cmd.AddCommand(newLangDownloadCommand(r))
	cmd.AddCommand(newLangActivateCommand(r))
	return cmd
}

func newLangListCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List offered languages and mark the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				active := a.Translation.ActiveLanguage(ctx)
				data := map[string]any{"active": active, "available": models.Languages}
				return out.Success(data, func(w io.Writer) {
					for _, l := range models.Languages {
						marker := " "
						if l.Code == active {
							marker = "*"
						}
						fmt.Fprintf(w, "%s %s\t%s\n", marker, l.Code, l.Name)
					}
				})
			})
		},
	}
}

func newLangShowCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show [code]",
		Short: "Print the dictionary for a language, or the active one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				var code string
				if len(args) == 1 {
					code = args[0]
				}
				dict := a.Translation.Resolve(ctx, code)
				return out.Success(dict, func(w io.Writer) { writeDictionary(w, dict) })
			})
		},
	}
}

func newLangDownloadCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "download <code>",
		Short: "Translate every UI string into a language and cache it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				_, report, err := a.Translation.Download(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(report, func(w io.Writer) {
					fmt.Fprintf(w, "%s: %d/%d translated\n", report.Code, report.Translated, report.Total)
					for _, fb := range report.Fallbacks {
						fmt.Fprintf(w, "  %s kept base text (%s)\n", fb.Key, fb.Reason)
					}
				})
			})
		},
	}
}

func newLangActivateCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <code>",
		Short: "Select a language, downloading it first when not cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				dict, err := a.Translation.Activate(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(dict, func(w io.Writer) {
					fmt.Fprintf(w, "active language: %s\n", dict.Code)
				})
			})
		},
	}
}

func writeDictionary(w io.Writer, dict *models.Dictionary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	keys := make([]string, 0, len(dict.Strings))
	for k := range dict.Strings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, dict.Strings[k])
	}
	_ = tw.Flush()
}
