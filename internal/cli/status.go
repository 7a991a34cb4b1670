// status.go implements "ninja status", the dashboard, and "ninja search".
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/search"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your dashboard",
		Long: `Show the stored profile, the current plan, and whether a payment
proof is waiting to be activated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()
				rec, err := a.store.Load(ctx)
				if err != nil {
					return err
				}
				if rec == nil {
					fmt.Fprintln(a.out, search.NoProfileMessage)
					return a.nav.Navigate(ctx, flow.PageUpload)
				}

				name := rec.Name()
				if name == "" {
					name = "there"
				}
				fmt.Fprintf(a.out, "Welcome, %s\n\n", name)
				printProfileSummary(a, rec)

				pending, err := a.store.PendingPremium(ctx)
				if err != nil {
					return err
				}
				if pending && !rec.IsPremium() {
					fmt.Fprintln(a.out, "\nPayment proof submitted; Pro activates on your next upload or with: ninja pay verify")
				}
				return nil
			})
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Print a job search link built from your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				rec, err := a.store.Load(cmd.Context())
				if err != nil {
					return err
				}
				link, err := search.JobSearchURL(rec)
				if errors.Is(err, search.ErrNoProfile) {
					return errors.New(search.NoProfileMessage)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, link)
				return nil
			})
		},
	}
}
