// events.go implements "ninja events" and "ninja reset".
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/log"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the local workflow journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				events, err := a.events.Tail(n)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(a.out, "No events recorded yet.")
					return nil
				}
				for _, e := range events {
					fmt.Fprintln(a.out, formatEvent(e))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "Number of most recent events to show (0 for all)")

	var days, keep int
	var dryRun bool
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Drop old events from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var dropped int
				var err error
				if cmd.Flags().Changed("keep") {
					dropped, err = a.events.PruneKeepRecent(keep, dryRun)
				} else {
					dropped, err = a.events.PruneByAge(days, dryRun)
				}
				if err != nil {
					return err
				}
				verb := "Removed"
				if dryRun {
					verb = "Would remove"
				}
				fmt.Fprintf(a.out, "%s %d events\n", verb, dropped)
				return nil
			})
		},
	}
	prune.Flags().IntVar(&days, "days", 30, "Remove events older than this many days")
	prune.Flags().IntVar(&keep, "keep", 0, "Keep only the most recent N events (overrides --days)")
	prune.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without removing it")

	cmd.AddCommand(prune)
	return cmd
}

// formatEvent renders one journal line.
func formatEvent(e log.LogEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-18s", e.Time.Local().Format("2006-01-02 15:04:05"), e.Event)
	for _, kv := range [][2]string{
		{"run", e.RunID},
		{"page", e.Page},
		{"file", e.File},
		{"state", e.State},
		{"message", e.Message},
		{"error", e.Error},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, " %s=%q", kv[0], kv[1])
		}
	}
	if e.Premium {
		b.WriteString(" premium=true")
	}
	return strings.TrimRight(b.String(), " ")
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored profile and any pending payment proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if !yes {
					ok, err := a.prompt.Confirm(cmd.Context(), "Delete the stored profile?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(a.out, "Aborted.")
						return nil
					}
				}
				removed, err := a.store.Reset(cmd.Context())
				if err != nil {
					return err
				}
				if len(removed) == 0 {
					fmt.Fprintln(a.out, "Nothing stored.")
					return nil
				}
				_ = a.events.Append(log.LogEvent{
					Event: log.EventStorageReset,
					Data:  map[string]interface{}{"slots": removed},
				})
				fmt.Fprintf(a.out, "Removed %s\n", strings.Join(removed, ", "))
				fmt.Fprintln(a.out, "Profile deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
