package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/kingrea/lineage/internal/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var locale, rootMarker string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .lineage directory and a default config",
		Long: `Create the .lineage directory and a default config.

An existing config is kept. --locale and --root-marker overwrite the
matching keys of the config and save it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig(opts.vaultDir)
			if err != nil {
				return err
			}
			if err := config.InitDir(cfg.VaultDir); err != nil {
				return fmt.Errorf("init %s: %w", filepath.Join(cfg.VaultDir, config.Dir), err)
			}
			flags := cmd.Flags()
			if flags.Changed("locale") || flags.Changed("root-marker") {
				if flags.Changed("locale") {
					if _, err := language.Parse(locale); err != nil {
						return fmt.Errorf("locale %q: %w", locale, err)
					}
					cfg.Project.Locale = locale
				}
				if flags.Changed("root-marker") {
					cfg.Project.RootMarker = rootMarker
				}
				if err := cfg.Save(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", cfg.ProjectDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "BCP 47 locale used to order note names")
	cmd.Flags().StringVar(&rootMarker, "root-marker", "", "path fragment that marks the root partition")
	return cmd
}
