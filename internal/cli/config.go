// config.go implements "ninja config init" and "ninja config show".
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/applyninja/ninja/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage config.yaml",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.yaml with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := resolveHome(opts)
			path := config.Path(home)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking config: %w", err)
			}

			cfg := config.DefaultConfig()
			if opts.server != "" {
				cfg.Server.BaseURL = opts.server
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.WriteConfig(home, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return fmt.Errorf("marshalling config: %w", err)
				}
				fmt.Fprintf(a.out, "# home: %s\n%s", a.home, data)
				return nil
			})
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}

func resolveHome(opts *rootOptions) string {
	if opts.home != "" {
		return opts.home
	}
	return config.DefaultHome()
}
