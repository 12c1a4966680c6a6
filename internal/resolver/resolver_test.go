package resolver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/vault"
)

func seed(prefix string, names ...string) []document.Document {
	out := make([]document.Document, 0, len(names))
	for _, name := range names {
		out = append(out, document.New(prefix+name+document.Ext, "# "+name))
	}
	return out
}

func newFixture(prefix string, names ...string) (*vault.Memory, *graph.Graph) {
	docs := seed(prefix, names...)
	store := vault.NewMemory(docs...)
	return store, graph.New(docs, prefix, graph.Alias{})
}

// settlingStore mimics a backend whose Create returns before the final
// content is visible: the durable text differs from what Create reported.
type settlingStore struct {
	*vault.Memory
	durable string
}

func (s *settlingStore) Create(ctx context.Context, path, content string) (document.Document, error) {
	doc, err := s.Memory.Create(ctx, path, content)
	if err != nil {
		return doc, err
	}
	s.Memory.Put(document.New(path, s.durable))
	return doc, nil
}

func TestFindExistingDocumentBySuffix(t *testing.T) {
	store, g := newFixture("Celestia/", "2024.Events.Weekly", "A.B")
	r := New(store)

	res, err := r.Find(context.Background(), g, "Events.Weekly", true)
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "2024.Events.Weekly", Content: "# 2024.Events.Weekly"}, res)
	assert.Empty(t, store.Created())
}

func TestFindSuffixMatchBeatsCreationOutsideRoot(t *testing.T) {
	store, g := newFixture("Celestia/", "A.B")
	res, err := New(store).Find(context.Background(), g, "B", true)
	require.NoError(t, err)
	assert.Equal(t, "A.B", res.Name)
	assert.Empty(t, store.Created())
}

func TestFindInRootRequiresExactDotlessMatch(t *testing.T) {
	store, g := newFixture("Void/", "A.B")
	res, err := New(store).Find(context.Background(), g, "B", true)
	require.NoError(t, err)
	assert.Equal(t, "B", res.Name)
	assert.Equal(t, []string{"Void/B.md"}, store.Created())
	assert.Equal(t, []string{"A.B", "B"}, g.Names())
}

func TestFindWithoutCreateReportsNotFoundWithoutMutation(t *testing.T) {
	store, g := newFixture("Celestia/", "Alpha", "Gamma")
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	_, err := New(store, WithLogger(logger)).Find(context.Background(), g, "Missing", false)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"Alpha", "Gamma"}, g.Names())
	assert.Empty(t, store.Created())
	assert.Contains(t, logs.String(), "document not found")
	assert.Contains(t, logs.String(), "name=Missing")
}

func TestFindCreatesPlaceholderInOrder(t *testing.T) {
	store, g := newFixture("Celestia/", "Alpha", "Gamma")

	res, err := New(store).Find(context.Background(), g, "beta", true)
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "beta", Content: document.Placeholder}, res)
	assert.Equal(t, []string{"Celestia/beta.md"}, store.Created())
	assert.Equal(t, []string{"Alpha", "beta", "Gamma"}, g.Names())

	res, err = New(store).Find(context.Background(), g, "Zulu", true)
	require.NoError(t, err)
	assert.Equal(t, "Zulu", res.Name)
	assert.Equal(t, []string{"Alpha", "beta", "Gamma", "Zulu"}, g.Names())
}

// unackedStore stores the document but reports the create as failed, the
// way a write nobody acknowledged would.
type unackedStore struct {
	*vault.Memory
	err error
}

func (s *unackedStore) Create(ctx context.Context, path, content string) (document.Document, error) {
	if _, err := s.Memory.Create(ctx, path, content); err != nil {
		return document.Document{}, err
	}
	return document.Document{}, s.err
}

func TestFindAdoptsDocumentStoredDespiteCreateError(t *testing.T) {
	store := &unackedStore{Memory: vault.NewMemory(), err: vault.ErrAckTimeout}
	g := graph.New(nil, "Celestia/", graph.Alias{})
	r := New(store)

	res, err := r.Find(context.Background(), g, "Genesis.Weekly", true)
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "Genesis.Weekly", Content: document.Placeholder}, res)
	assert.Equal(t, []string{"Genesis.Weekly"}, g.Names())

	res, err = r.Find(context.Background(), g, "Genesis.Weekly", true)
	require.NoError(t, err)
	assert.Equal(t, "Genesis.Weekly", res.Name)
	assert.Equal(t, []string{"Celestia/Genesis.Weekly.md"}, store.Created())
}

func TestFindAdoptsFileWrittenBehindGraph(t *testing.T) {
	store := vault.NewMemory(document.New("Celestia/Late.md", "# Late"))
	g := graph.New(nil, "Celestia/", graph.Alias{})

	res, err := New(store).Find(context.Background(), g, "Late", true)
	require.NoError(t, err)
	assert.Equal(t, Result{Name: "Late", Content: "# Late"}, res)
	assert.Equal(t, []string{"Late"}, g.Names())
	assert.Empty(t, store.Created())
}

func TestFindReturnsDurableContentAfterCreate(t *testing.T) {
	store := &settlingStore{Memory: vault.NewMemory(), durable: "\n# temp\n\n(indexed)"}
	g := graph.New(nil, "Celestia/", graph.Alias{})

	res, err := New(store).Find(context.Background(), g, "Genesis.Weekly", true)
	require.NoError(t, err)
	assert.Equal(t, "\n# temp\n\n(indexed)", res.Content)

	docs := g.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Celestia/Genesis.Weekly.md", docs[0].Path)
}

func TestFindPropagatesCreateFailureWithoutMutation(t *testing.T) {
	store, g := newFixture("Celestia/", "Alpha")
	boom := errors.New("disk full")
	store.FailCreates(boom)

	_, err := New(store).Find(context.Background(), g, "Beta", true)
	require.ErrorIs(t, err, boom)
	var createErr *CreateError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, "Celestia/Beta.md", createErr.Path)
	assert.Equal(t, []string{"Alpha"}, g.Names())
}

func TestConcurrentFindsCreateOnce(t *testing.T) {
	store, g := newFixture("Celestia/", "Alpha")
	r := New(store)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Find(context.Background(), g, "Shared", true)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Celestia/Shared.md"}, store.Created())
	assert.Equal(t, []string{"Alpha", "Shared"}, g.Names())
}
