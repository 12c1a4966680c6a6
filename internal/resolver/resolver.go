package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/logging"
)

// ErrNotFound is returned when a lookup misses and creation was disabled.
var ErrNotFound = errors.New("resolver: document not found")

// CreateError reports a storage failure while creating a missing document.
type CreateError struct {
	Name string
	Path string
	Err  error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("resolver: create %q at %s: %v", e.Name, e.Path, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// Storage is the subset of the storage layer the resolver needs. Create must
// return only once the document is durably stored and visible to Lookup.
type Storage interface {
	Create(ctx context.Context, path, content string) (document.Document, error)
	Read(ctx context.Context, doc document.Document) (string, error)
	Lookup(ctx context.Context, path string) (document.Document, bool, error)
}

// Result is a resolved document: its basename and full text.
type Result struct {
	Name    string
	Content string
}

// Resolver finds documents in a graph and creates the ones that are missing.
type Resolver struct {
	store  Storage
	logger *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a resolver over store.
func New(store Storage, opts ...Option) *Resolver {
	r := &Resolver{store: store, logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find resolves name inside g. When nothing matches and create is true, a
// placeholder document is created at g.Path()+name+".md" and inserted into g
// in collation order; the returned content is re-read from storage.
func (r *Resolver) Find(ctx context.Context, g *graph.Graph, name string, create bool) (Result, error) {
	doc, ok := g.Match(name)
	if !ok {
		var err error
		doc, err = r.findOrCreate(ctx, g, name, create)
		if err != nil {
			return Result{}, err
		}
	}
	content, err := r.store.Read(ctx, doc)
	if err != nil {
		return Result{}, fmt.Errorf("resolver: read %s: %w", doc.Path, err)
	}
	return Result{Name: doc.Name, Content: content}, nil
}

func (r *Resolver) findOrCreate(ctx context.Context, g *graph.Graph, name string, create bool) (document.Document, error) {
	var (
		doc     document.Document
		created bool
	)
	err := g.Update(func(tx *graph.Tx) error {
		// Another caller may have created it while we waited for the lock.
		if existing, ok := tx.Match(name); ok {
			doc = existing
			return nil
		}
		if !create {
			return fmt.Errorf("%w: %q in %q", ErrNotFound, name, g.Path())
		}
		path := g.Path() + name + document.Ext
		fresh, err := r.store.Create(ctx, path, document.Placeholder)
		if err != nil {
			// A create can fail after the document reached storage (an
			// unacknowledged write, or a file written behind the graph).
			stored, ok, lookupErr := r.store.Lookup(ctx, path)
			if lookupErr != nil || !ok {
				return &CreateError{Name: name, Path: path, Err: err}
			}
			r.logger.Warn("document already stored, adopting it", "name", name, "path", path, "error", err)
			fresh = stored
		}
		tx.Insert(fresh)
		doc = fresh
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Error("document not found", "name", name, "graph", g.Path())
		} else {
			r.logger.Error("document creation failed", "name", name, "graph", g.Path(), "error", err)
		}
		return document.Document{}, err
	}
	if !created {
		return doc, nil
	}
	r.logger.Info("document created", "name", name, "graph", g.Path(), "path", doc.Path)

	stored, ok, err := r.store.Lookup(ctx, doc.Path)
	if err != nil {
		return document.Document{}, fmt.Errorf("resolver: refresh %s: %w", doc.Path, err)
	}
	if ok {
		doc = stored
	}
	return doc, nil
}
