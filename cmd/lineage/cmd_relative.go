package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/linker"
	"github.com/kingrea/lineage/internal/relative"
	"github.com/kingrea/lineage/internal/tui"
)

var relationItems = []tui.Item{
	{Value: string(relative.Father), Label: "Open/create father", Hint: "drop the last name segment"},
	{Value: string(relative.Child), Label: "Create child", Hint: "append a name segment"},
	{Value: string(relative.Sibling), Label: "Create sibling", Hint: "replace the last name segment"},
}

func newRelativeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "relative <note> [father|child|sibling] [label]",
		Short: "Open or create the father, a child or a sibling of a note",
		Long: `Open or create a relative of a note.

<note> is a vault-relative path, with or without the .md suffix. When the
relation or the label is omitted an interactive menu asks for it.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			notePath := path.Clean(strings.TrimSpace(args[0]))
			if !strings.HasSuffix(notePath, document.Ext) {
				notePath += document.Ext
			}
			current, ok, err := s.store.Lookup(ctx, notePath)
			if err != nil {
				return err
			}
			if !ok {
				s.book.Warn("No active note: %s", notePath)
				return fmt.Errorf("note %s not found", notePath)
			}

			progOpts := []tea.ProgramOption{tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout())}
			kind, err := relationArg(ctx, args, s, progOpts)
			if err != nil {
				return err
			}
			if kind == relative.Sibling && document.IsRoot(current.Name) {
				err := fmt.Errorf("%w: %s", relative.ErrRootHasNoSibling, current.Name)
				s.book.Error("Could not %s: %v", describe(kind), err)
				return err
			}
			var label string
			if kind != relative.Father {
				label, err = labelArg(ctx, args, kind, s, progOpts)
				if err != nil {
					return err
				}
			}

			ops := relative.New(s.store, linker.NewJournal(s.logger.Slog(), s.book), s.opener(), s.layout,
				relative.WithLogger(s.logger.Slog()))
			out, err := ops.Run(ctx, kind, current, label)
			if err != nil {
				s.book.Error("Could not %s: %v", describe(kind), err)
				return err
			}
			if out.Created {
				s.book.Info("Created and updated %s: %s", kind, out.Document.Name)
			} else {
				s.book.Info("Father opened: %s", out.Document.Name)
			}
			return nil
		},
	}
}

func relationArg(ctx context.Context, args []string, s *session, progOpts []tea.ProgramOption) (relative.Kind, error) {
	if len(args) >= 2 {
		for _, k := range relative.Kinds {
			if strings.EqualFold(args[1], string(k)) {
				return k, nil
			}
		}
		return "", fmt.Errorf("unknown relation %q (want father, child or sibling)", args[1])
	}
	item, err := tui.Choose(ctx, "Relative", relationItems, []tui.ModelOption{tui.WithNotices(s.book)}, progOpts...)
	if err != nil {
		return "", err
	}
	return relative.Kind(item.Value), nil
}

func labelArg(ctx context.Context, args []string, kind relative.Kind, s *session, progOpts []tea.ProgramOption) (string, error) {
	if len(args) == 3 {
		return args[2], nil
	}
	return tui.Ask(ctx, fmt.Sprintf("Name of the %s:", kind),
		[]tui.ModelOption{tui.WithValidator(relative.ValidateLabel), tui.WithNotices(s.book)},
		progOpts...)
}

func describe(kind relative.Kind) string {
	if kind == relative.Father {
		return "find or create the father"
	}
	return "create the " + string(kind)
}
