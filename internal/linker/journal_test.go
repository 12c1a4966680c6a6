package linker

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/logbook"
)

func TestJournalRecordsUpdate(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	book, err := logbook.New(filepath.Join(t.TempDir(), "notices.log"))
	require.NoError(t, err)

	doc := document.New("Void/A.B.md", "# B")
	target := graph.New([]document.Document{doc}, "Void/", graph.Alias{})
	secondary := graph.New(nil, "Celestia/", graph.Alias{})

	require.NoError(t, NewJournal(logger, book).Update(context.Background(), doc, target, secondary))

	out := buf.String()
	assert.Contains(t, out, "links update requested")
	assert.Contains(t, out, "name=A.B")
	assert.Contains(t, out, "target=Void/")
	assert.Contains(t, out, "secondary_size=0")

	lines, total := book.Tail(5)
	assert.Equal(t, 1, total)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "indexed A.B in Void/")
}

func TestJournalWithoutSinks(t *testing.T) {
	doc := document.New("Celestia/X.md", "")
	target := graph.New(nil, "Celestia/", graph.Alias{})
	require.NoError(t, NewJournal(nil, nil).Update(context.Background(), doc, target, nil))
}

func TestJournalHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := graph.New(nil, "Void/", graph.Alias{})
	err := NewJournal(nil, nil).Update(ctx, document.New("Void/A.md", ""), target, nil)
	require.ErrorIs(t, err, context.Canceled)
}
