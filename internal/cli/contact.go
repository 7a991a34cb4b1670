// contact.go implements "ninja contact" and "ninja health".
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/log"
)

func newContactCmd(opts *rootOptions) *cobra.Command {
	var msg api.ContactMessage
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the ApplyNinja team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if msg.Name == "" || msg.Email == "" || msg.Message == "" {
				return errors.New("--name, --email and --message are required")
			}
			return withApp(cmd, opts, func(a *app) error {
				reply, err := a.client.Contact(cmd.Context(), msg)
				if err != nil {
					return fmt.Errorf("Error sending message: %s", api.Message(err))
				}
				_ = a.events.Append(log.LogEvent{Event: log.EventContactSubmitted})
				fmt.Fprintln(a.out, reply)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&msg.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "Reply address")
	cmd.Flags().StringVar(&msg.Message, "message", "", "Message text")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				h, err := a.client.Health(cmd.Context())
				if err != nil {
					return fmt.Errorf("server %s unreachable: %s", a.client.BaseURL(), api.Message(err))
				}
				env := "not loaded"
				if h.EnvLoaded {
					env = "loaded"
				}
				fmt.Fprintf(a.out, "Server: %s\nStatus: %s\nEnv:    %s\n", a.client.BaseURL(), h.Status, env)
				return nil
			})
		},
	}
}
