package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kingrea/lineage/internal/config"
	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/editor"
	"github.com/kingrea/lineage/internal/logbook"
	"github.com/kingrea/lineage/internal/logging"
	"github.com/kingrea/lineage/internal/relative"
	"github.com/kingrea/lineage/internal/vault"
	"github.com/kingrea/lineage/internal/workspace"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	vaultDir string
	dryRun   bool
	noOpen   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Navigate and grow a vault of dot-named notes",
		Long: `lineage resolves and creates notes in a vault whose note names encode a
hierarchy with dots: "Week.Tuesday" is a child of "Week".

Notes live in two partitions, Void (the root partition) and Celestia.
Configuration is read from <vault>/.lineage/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.vaultDir, "vault", ".", "vault root directory (LINEAGE_VAULT overrides)")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "work on an in-memory copy of the vault")
	cmd.PersistentFlags().BoolVar(&opts.noOpen, "no-open", false, "do not launch $EDITOR on the resulting note")

	cmd.AddCommand(
		newInitCmd(opts),
		newFindCmd(opts),
		newPeriodicCmd(opts),
		newRelativeCmd(opts),
		newLogCmd(opts),
	)
	return cmd
}

// store is the union of the storage contracts the commands need.
type store interface {
	Create(ctx context.Context, path, content string) (document.Document, error)
	Read(ctx context.Context, doc document.Document) (string, error)
	Lookup(ctx context.Context, path string) (document.Document, bool, error)
	List(ctx context.Context) ([]document.Document, error)
}

// session is everything a command needs once the vault is open.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	book   *logbook.Logbook
	vault  *vault.Vault
	store  store
	layout workspace.Layout
	opts   *rootOptions
	out    io.Writer
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, err := config.NewConfig(o.vaultDir)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Env.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.VaultDir, level)
	if err != nil {
		return nil, err
	}
	book, err := logbook.Open(cfg.LogsDir(), logbook.WithEcho(cmd.OutOrStdout()))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open notices: %w", err)
	}
	layout, err := workspace.LayoutFromConfig(cfg.Project)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		logger: logger,
		book:   book,
		layout: layout,
		opts:   o,
		out:    cmd.OutOrStdout(),
	}
	v, err := vault.Open(ctx, cfg.VaultDir,
		vault.WithLogger(logger.Slog()),
		vault.WithAckTimeout(cfg.Project.Storage.AckTimeout),
	)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	s.vault = v
	s.store = v

	if o.dryRun {
		docs, err := v.List(ctx)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		s.store = vault.NewMemory(docs...)
		logger.Slog().Info("dry run", "documents", len(docs))
		return s, nil
	}
	if err := v.Watch(ctx); err != nil {
		_ = logger.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	if s.vault != nil {
		_ = s.vault.Close()
	}
	_ = s.logger.Close()
}

// opener picks the editor for the session.
func (s *session) opener() relative.Opener {
	if s.opts.noOpen || s.opts.dryRun {
		return editor.Nop{}
	}
	return editor.New(s.cfg.Env.Editor, s.vault)
}

func (s *session) partitions(ctx context.Context) (*workspace.Partitions, error) {
	return workspace.Build(ctx, s.store, s.layout)
}
