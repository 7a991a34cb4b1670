// settings.go implements "ninja settings" and "ninja profile", which show and
// edit the stored profile.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/log"
	"github.com/applyninja/ninja/internal/profile"
	"github.com/applyninja/ninja/internal/search"
)

type settingsFlags struct {
	name   string
	role   string
	skills string
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or edit profile settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the editable profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				rec, err := a.store.Load(cmd.Context())
				if err != nil {
					return err
				}
				if rec == nil {
					rec = profile.NewRecord()
				}
				fmt.Fprintf(a.out, "name:     %s\n", rec.Name())
				fmt.Fprintf(a.out, "job_role: %s\n", rec.JobRole())
				fmt.Fprintf(a.out, "skills:   %s\n", profile.FormatSkills(rec.Skills()))
				return nil
			})
		},
	}

	flags := &settingsFlags{}
	set := &cobra.Command{
		Use:   "set",
		Short: "Update name, job role, or skills",
		Long: `Update profile fields. Fields you do not pass are left as they are,
and fields the editor does not know about are preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runSettingsSet(cmd, a, flags)
			})
		},
	}
	set.Flags().StringVar(&flags.name, "name", "", "Full name")
	set.Flags().StringVar(&flags.role, "role", "", "Target job role")
	set.Flags().StringVar(&flags.skills, "skills", "", "Comma-separated skills")

	cmd.AddCommand(show, set)
	return cmd
}

func runSettingsSet(cmd *cobra.Command, a *app, flags *settingsFlags) error {
	var patch profile.Patch
	if cmd.Flags().Changed("name") {
		patch.Name = profile.String(flags.name)
	}
	if cmd.Flags().Changed("role") {
		patch.JobRole = profile.String(flags.role)
	}
	if cmd.Flags().Changed("skills") {
		patch.Skills = profile.StringSlice(profile.ParseSkills(flags.skills))
	}
	if patch.IsZero() {
		return errors.New("nothing to change; pass --name, --role, or --skills")
	}

	if _, err := a.store.Merge(cmd.Context(), patch); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	_ = a.events.Append(log.LogEvent{Event: log.EventSettingsSaved})
	fmt.Fprintln(a.out, "Settings Saved!")
	return a.nav.Navigate(cmd.Context(), flow.PageDashboard)
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the stored profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				rec, err := a.store.Read(cmd.Context())
				if err != nil {
					return err
				}
				if rec == nil {
					return errors.New(search.NoProfileMessage)
				}
				data, err := json.MarshalIndent(rec, "", "    ")
				if err != nil {
					return fmt.Errorf("encoding profile: %w", err)
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			})
		},
	}
}
