package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fieldsync/internal/app"
	"fieldsync/internal/profile/models"
	dErrors "fieldsync/pkg/domain-errors"
)

func newProfileCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Register, log in and inspect the worker profile",
	}
	cmd.AddCommand(newProfileRegisterCommand(r))
	cmd.AddCommand(newProfileLoginCommand(r))
	cmd.AddCommand(newProfileShowCommand(r))
	return cmd
}

func newProfileRegisterCommand(r *runner) *cobra.Command {
	var fields map[string]string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an ASHA profile and make it the current user",
		Example: `  fieldctl profile register --field name=Kavitha --field ashaId=ASHA-017 \
    --field age=34 --field phone=9876543210 --field village=Melur`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				p, err := profileFromFields(fields)
				if err != nil {
					return err
				}
				saved, err := a.Profiles.Register(ctx, p)
				if err != nil {
					return err
				}
				return out.Success(saved, func(w io.Writer) {
					fmt.Fprintf(w, "registered %s (%s)\n", saved.AshaID, saved.Name)
				})
			})
		},
	}
	cmd.Flags().StringToStringVar(&fields, "field", nil, "profile field as key=value (repeatable)")
	return cmd
}

func newProfileLoginCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "login <ashaId>",
		Short: "Make a registered worker the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				p, err := a.Profiles.Login(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(p, func(w io.Writer) {
					fmt.Fprintf(w, "logged in as %s (%s)\n", p.AshaID, p.Name)
				})
			})
		},
	}
}

func newProfileShowCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				p, err := a.Profiles.Current(ctx)
				if err != nil {
					return err
				}
				return out.Success(p, func(w io.Writer) {
					fmt.Fprintf(w, "%s\t%s\n", "ashaId", p.AshaID)
					fmt.Fprintf(w, "%s\t%s\n", "name", p.Name)
					fmt.Fprintf(w, "%s\t%s\n", "village", p.Village)
					fmt.Fprintf(w, "%s\t%s\n", "phone", p.Phone)
				})
			})
		},
	}
}

// profileFromFields maps --field pairs onto the profile's JSON names.
func profileFromFields(fields map[string]string) (models.ASHAProfile, error) {
	var p models.ASHAProfile
	raw, err := json.Marshal(fields)
	if err != nil {
		return p, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid profile fields")
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid profile fields")
	}
	return p, nil
}
