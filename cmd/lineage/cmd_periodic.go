package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kingrea/lineage/internal/cadence"
	"github.com/kingrea/lineage/internal/resolver"
)

func newPeriodicCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periodic <founder|father> <weekly|monthly|quarterly|yearly> <note>",
		Short: "Resolve the founder or father of a periodic note",
		Long: `Resolve the founder (or father) of a periodic note.

The cadence template (periodic.templates in config.yaml) is founded by its
genesis note in Celestia (periodic.celestia_paths); every other note of the
cadence is founded by the template in Void. Missing notes are created.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			relation := strings.ToLower(strings.TrimSpace(args[0]))
			if relation != "founder" && relation != "father" {
				return fmt.Errorf("unknown relation %q (want founder or father)", args[0])
			}
			c, err := cadence.Parse(args[1])
			if err != nil {
				return err
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			parts, err := s.partitions(ctx)
			if err != nil {
				return err
			}
			finder := resolver.New(s.store, resolver.WithLogger(s.logger.Slog()))
			periodic, err := cadence.New(finder, cadence.TableFromConfig(s.cfg.Project.Periodic))
			if err != nil {
				return err
			}

			var res resolver.Result
			if relation == "father" {
				res, err = periodic.FindFather(ctx, c, args[2], parts.Void, parts.Celestia)
			} else {
				res, err = periodic.FindFounder(ctx, c, args[2], parts.Void, parts.Celestia)
			}
			if err != nil {
				s.book.Error("No %s %s for %s: %v", c, relation, args[2], err)
				return err
			}
			s.book.Info("%s %s of %s: %s", cases.Title(language.Und).String(c.String()), relation, args[2], res.Name)
			return nil
		},
	}
}
