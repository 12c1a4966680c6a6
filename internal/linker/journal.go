// Package linker holds implementations of the link updater that runs after a
// relative joins a partition.
package linker

import (
	"context"
	"log/slog"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/logbook"
	"github.com/kingrea/lineage/internal/logging"
)

// Journal records every update request instead of rewriting links. It is the
// updater used until a link engine is configured, and the one used by dry
// runs.
type Journal struct {
	logger *slog.Logger
	book   *logbook.Logbook
}

// NewJournal returns a journal writing to logger and, when non-nil, book.
func NewJournal(logger *slog.Logger, book *logbook.Logbook) *Journal {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Journal{logger: logger, book: book}
}

// Update logs the document, the partition it joined and the size of both
// partitions.
func (j *Journal) Update(ctx context.Context, doc document.Document, target, secondary *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attrs := []any{
		"name", doc.Name,
		"path", doc.Path,
		"target", target.Path(),
		"target_size", target.Len(),
	}
	if secondary != nil {
		attrs = append(attrs, "secondary", secondary.Path(), "secondary_size", secondary.Len())
	}
	j.logger.Info("links update requested", attrs...)
	j.book.Info("indexed %s in %s", doc.Name, target.Path())
	return nil
}
