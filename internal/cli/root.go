// Package cli defines Cobra command definitions for the ninja CLI.
// This file contains the root command, persistent flags, and Execute.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	home      string
	server    string
	debug     bool
	ephemeral bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ninja",
		Short: "ApplyNinja client: resume analysis, job agent, and application history",
		Long: `ninja talks to an ApplyNinja server. Upload a resume to build your
profile, unlock the Pro plan, deploy the job application agent, and
follow its application history.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&opts.home, "home", "", "State directory (default $APPLYNINJA_HOME or ~/.applyninja)")
	cmd.PersistentFlags().StringVar(&opts.server, "server", "", "Server base URL (overrides config and $APPLYNINJA_SERVER)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log requests and state transitions to stderr")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep the profile in memory only for this invocation")

	cmd.AddCommand(
		newUploadCmd(opts),
		newPayCmd(opts),
		newAgentCmd(opts),
		newHistoryCmd(opts),
		newSettingsCmd(opts),
		newProfileCmd(opts),
		newStatusCmd(opts),
		newSearchCmd(opts),
		newContactCmd(opts),
		newHealthCmd(opts),
		newEventsCmd(opts),
		newResetCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
