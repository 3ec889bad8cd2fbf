package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vpatch/internal/config"
	"github.com/vango-dev/vpatch/internal/errors"
)

func initCmd(o *options) *cobra.Command {
	var (
		force   bool
		host    string
		modules []string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default vpatch.json",
		Long: `Write vpatch.json with the default settings into the config
directory (-C). An existing file is kept unless --force is given.

Examples:
  vpatch init
  vpatch init --host=mem --modules=attributes,class,metrics`,
		Args: cobra.NoArgs,
		// The file may be missing or broken; only colors apply here.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setColor()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(o.dir) && !force {
				return errors.New("E142").
					WithPath(filepath.Join(o.dir, config.ConfigFileName)).
					WithSuggestion("Pass --force to overwrite it")
			}

			cfg := config.Default()
			if host != "" {
				cfg.Host = host
			}
			if cmd.Flags().Changed("modules") {
				cfg.Modules = modules
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(filepath.Join(o.dir, config.ConfigFileName)); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Wrote %s", cfg.Path())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing vpatch.json")
	cmd.Flags().StringVar(&host, "host", "", "Host adapter (html or mem)")
	cmd.Flags().StringSliceVar(&modules, "modules", nil, "Enabled modules")

	return cmd
}
