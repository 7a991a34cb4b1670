// agent.go implements "ninja agent", which deploys and stops the job
// application agent.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/agent"
	"github.com/applyninja/ninja/internal/api"
)

type deployFlags struct {
	email string
}

func newAgentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the job application agent",
	}

	flags := &deployFlags{}
	deploy := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the agent and wait for the run to finish",
		Long: `Deploy the agent with your LinkedIn credentials and wait until the
server reports the run finished. Press Ctrl-C once to ask the agent to
stop after its current action; press it again to stop waiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				return runDeploy(cmd, a, flags)
			})
		},
	}
	deploy.Flags().StringVar(&flags.email, "email", "", "LinkedIn email (prompted if empty)")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Ask a running agent to halt after its current action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				msg, err := a.client.StopAgent(cmd.Context())
				if err != nil {
					return fmt.Errorf("Error stopping bot: %w", err)
				}
				fmt.Fprintln(a.out, "🛑 "+msg)
				return nil
			})
		},
	}

	cmd.AddCommand(deploy, stop)
	return cmd
}

func runDeploy(cmd *cobra.Command, a *app, flags *deployFlags) error {
	creds, err := readCredentials(a, flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctrl := a.agent()
	stopOnInterrupt(ctx, a, ctrl, cancel)

	fmt.Fprintln(a.out, "🤖 LinkedIn Agent Deployed! Press Ctrl-C to stop.")
	out, err := ctrl.Deploy(ctx, creds)

	switch {
	case errors.Is(err, agent.ErrMissingCredentials):
		return errors.New("email and password are required")
	case out == nil:
		return err
	case out.Late:
		if err != nil {
			fmt.Fprintf(a.out, "Agent stopped (last response: %s)\n", api.Message(err))
		} else {
			fmt.Fprintf(a.out, "Agent stopped (last response: %s)\n", out.Message)
		}
		return nil
	case out.PaymentRequired:
		return settlePayment(ctx, a, ctrl)
	case err != nil:
		if api.IsCanceled(err) {
			return errors.New("stopped waiting for the agent")
		}
		var te *api.TransportError
		if errors.As(err, &te) {
			return fmt.Errorf("Network Error: %s", api.Message(err))
		}
		return fmt.Errorf("Agent Error: %s", api.Message(err))
	}

	fmt.Fprintln(a.out, "✅ "+out.Message)
	return nil
}

// stopOnInterrupt sends a stop request on the first Ctrl-C and cancels
// the wait on the second.
func stopOnInterrupt(ctx context.Context, a *app, ctrl *agent.Controller, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	go func() {
		defer signal.Stop(sigs)
		stopped := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigs:
				if stopped {
					cancel()
					return
				}
				stopped = true
				msg, err := ctrl.Stop(ctx)
				if err != nil {
					fmt.Fprintf(a.out, "\nError stopping bot: %s\n", api.Message(err))
					continue
				}
				fmt.Fprintln(a.out, "\n🛑 "+msg)
			}
		}
	}()
}

// settlePayment offers to verify payment after the agent was refused.
func settlePayment(ctx context.Context, a *app, ctrl *agent.Controller) error {
	ok, err := a.prompt.Confirm(ctx, "Have you already paid? Verify now")
	if err != nil || !ok {
		_ = ctrl.DismissPayment()
		fmt.Fprintln(a.out, "Submit a payment screenshot with: ninja pay submit <screenshot>")
		return err
	}

	msg, err := ctrl.ResolvePayment(ctx)
	if err != nil {
		_ = ctrl.DismissPayment()
		return fmt.Errorf("Verification Failed: %s", api.Message(err))
	}
	fmt.Fprintln(a.out, "🎉 "+msg)
	fmt.Fprintln(a.out, "Run ninja agent deploy again to start the agent.")
	return nil
}

func readCredentials(a *app, flags *deployFlags) (api.Credentials, error) {
	email := flags.email
	if email == "" {
		v, err := a.prompt.Ask("LinkedIn email")
		if err != nil {
			return api.Credentials{}, fmt.Errorf("reading email: %w", err)
		}
		email = v
	}
	password, err := a.prompt.AskSecret("LinkedIn password")
	if err != nil {
		return api.Credentials{}, fmt.Errorf("reading password: %w", err)
	}
	return api.Credentials{Identifier: email, Secret: password}, nil
}
