// pay.go implements "ninja pay", the premium unlock workflow.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/payment"
	"github.com/applyninja/ninja/internal/ui"
)

func newPayCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Unlock the Pro plan",
	}

	submit := &cobra.Command{
		Use:   "submit <screenshot>",
		Short: "Submit a payment screenshot",
		Long: `Record a payment proof. The Pro plan is activated after your next
successful resume upload, or immediately with "ninja pay verify".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runPaySubmit(cmd, a, args)
			})
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Ask the server to verify payment and activate Pro now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				msg, err := a.gate(nil).Promote(cmd.Context())
				if err != nil {
					return fmt.Errorf("Verification Failed: %w", err)
				}
				fmt.Fprintln(a.out, "🎉 "+msg)
				return nil
			})
		},
	}

	cmd.AddCommand(submit, verify)
	return cmd
}

func runPaySubmit(cmd *cobra.Command, a *app, args []string) error {
	var proof *flow.File
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening screenshot: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("reading screenshot: %w", err)
		}
		proof = &flow.File{Name: filepath.Base(args[0]), Size: info.Size(), Content: f}
	}

	progress := ui.NewProgressDisplay(a.out, "Payment Proof")
	err := a.gate(progress).SubmitProof(cmd.Context(), proof)
	if errors.Is(err, payment.ErrNoProof) {
		return errors.New("Please upload a screenshot of your payment.")
	}
	return err
}
