package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/lineage/internal/config"
	"github.com/kingrea/lineage/internal/logbook"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig(opts.vaultDir)
			if err != nil {
				return err
			}
			book, err := logbook.Open(cfg.LogsDir())
			if err != nil {
				return err
			}
			tail, total := book.Tail(lines)
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, "No notices yet.")
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "(%d of %d notices)\n", len(tail), total)
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of notices to show")
	return cmd
}
