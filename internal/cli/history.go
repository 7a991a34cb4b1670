// history.go implements "ninja history", the application log viewer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/history"
	"github.com/applyninja/ninja/internal/tui"
	"github.com/applyninja/ninja/internal/ui"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the applications the agent has logged",
		Long: `Fetch the application log from the server. With --watch the log is
refreshed every poll interval until you quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if watch {
					return watchHistory(cmd, a)
				}
				p := a.poller(tui.NewPlainRenderer(a.out), nil)
				if err := p.Refresh(cmd.Context()); err != nil {
					return fmt.Errorf("Error: %s", api.Message(err))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling and redraw on every change")

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the application log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var confirmer history.Confirmer = a.prompt
				if yes {
					confirmer = ui.AlwaysConfirm{}
				}
				p := a.poller(tui.NewPlainRenderer(a.out), confirmer)
				err := p.Clear(cmd.Context())
				if errors.Is(err, flow.ErrCancelled) {
					fmt.Fprintln(a.out, "Cancelled.")
					return nil
				}
				if err != nil {
					return fmt.Errorf("Error: %s", api.Message(err))
				}
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(clearCmd)
	return cmd
}

// watchHistory runs the poller until interrupted, inside the TUI when
// attached to a terminal.
func watchHistory(cmd *cobra.Command, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if !tui.IsTTY() {
		p := a.poller(tui.NewPlainRenderer(a.out), nil)
		if err := p.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		p.Stop()
		return nil
	}

	var p *history.Poller
	model := tui.NewHistoryModel(ctx, tui.Actions{
		Refresh: func(ctx context.Context) error { return p.Refresh(ctx) },
		Clear:   func(ctx context.Context) error { return p.Clear(ctx) },
	})
	prog := tui.NewProgram(model)
	// The view asks for confirmation itself before calling Clear.
	p = a.poller(tui.ProgramRenderer{P: prog}, ui.AlwaysConfirm{})

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Stop()

	go func() {
		<-ctx.Done()
		prog.Quit()
	}()
	_, err := prog.Run()
	return err
}
