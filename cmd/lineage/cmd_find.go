package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/resolver"
	"github.com/kingrea/lineage/internal/workspace"
)

const suggestionLimit = 5

func newFindCmd(opts *rootOptions) *cobra.Command {
	var noCreate bool
	cmd := &cobra.Command{
		Use:   "find <void|celestia> <name>",
		Short: "Resolve a note by name, creating it when missing",
		Long: `Resolve a note inside one partition.

In the Void partition a name without dots must match a note name exactly;
everywhere else the first note whose name ends with <name> wins. When nothing
matches, a placeholder note is created unless --no-create is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			g, err := pickPartition(parts, args[0])
			if err != nil {
				return err
			}
			res, err := resolver.New(s.store, resolver.WithLogger(s.logger.Slog())).
				Find(ctx, g, args[1], !noCreate)
			if errors.Is(err, resolver.ErrNotFound) {
				s.book.Warn("Not found: %s", args[1])
				if hints := g.Suggest(args[1], suggestionLimit); len(hints) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Did you mean: %s\n", strings.Join(hints, ", "))
				}
				return err
			}
			if err != nil {
				s.book.Error("Could not resolve %s: %v", args[1], err)
				return err
			}
			fmt.Fprintf(s.out, "%s\n%s\n", res.Name, res.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCreate, "no-create", false, "report missing notes instead of creating them")
	return cmd
}

func pickPartition(parts *workspace.Partitions, name string) (*graph.Graph, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "void":
		return parts.Void, nil
	case "celestia":
		return parts.Celestia, nil
	default:
		return nil, fmt.Errorf("unknown partition %q (want void or celestia)", name)
	}
}
