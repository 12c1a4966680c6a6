// Package graph holds a Collection: the ordered partition of documents stored
// under one path prefix, together with the alias bundle configured for it.
//
// The document list is owned by the Graph. Readers get snapshots; writers go
// through Update, an exclusive per-graph transaction, so concurrent
// find-or-create calls can neither break the ordering nor lose insertions.
package graph

import (
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kingrea/lineage/internal/document"
)

// DefaultRootMarker identifies the root partition by its path.
const DefaultRootMarker = "Void"

// Alias is the template bundle carried by a partition. The graph and the
// resolver pass it through without interpreting it.
type Alias struct {
	Founder  string
	Ancestor string
	Father   string
}

// Graph is an ordered set of documents sharing a path prefix.
type Graph struct {
	mu         sync.RWMutex
	docs       []document.Document
	path       string
	alias      Alias
	rootMarker string
	collator   *collate.Collator
}

// Option customizes a Graph during construction.
type Option func(*Graph)

// WithRootMarker overrides the substring that marks the root partition path.
func WithRootMarker(marker string) Option {
	return func(g *Graph) {
		g.rootMarker = marker
	}
}

// WithLanguage selects the collation used for ordered insertion.
func WithLanguage(tag language.Tag) Option {
	return func(g *Graph) {
		g.collator = collate.New(tag)
	}
}

// New builds a graph over files, which must already be sorted by name and
// stored under path. The slice is adopted, not copied.
func New(files []document.Document, path string, alias Alias, opts ...Option) *Graph {
	g := &Graph{
		docs:       files,
		path:       path,
		alias:      alias,
		rootMarker: DefaultRootMarker,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.collator == nil {
		g.collator = collate.New(language.Und)
	}
	return g
}

// SortDocuments orders docs by name using the collation for tag.
func SortDocuments(docs []document.Document, tag language.Tag) {
	c := collate.New(tag)
	sort.SliceStable(docs, func(i, j int) bool {
		return c.CompareString(docs[i].Name, docs[j].Name) < 0
	})
}

// Path returns the prefix shared by every member document.
func (g *Graph) Path() string { return g.path }

// Alias returns the alias bundle.
func (g *Graph) Alias() Alias { return g.alias }

// IsRoot reports whether this graph is the root partition.
func (g *Graph) IsRoot() bool {
	return g.rootMarker != "" && strings.Contains(g.path, g.rootMarker)
}

// Len returns the number of documents.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.docs)
}

// Documents returns a snapshot of the ordered document list.
func (g *Graph) Documents() []document.Document {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]document.Document(nil), g.docs...)
}

// Names returns the ordered document names.
func (g *Graph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return names(g.docs)
}

// Match returns the first document whose name matches query.
func (g *Graph) Match(query string) (document.Document, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.match(query)
}

// Suggest returns up to limit names that fuzzily resemble query, best first.
func (g *Graph) Suggest(query string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	candidates := g.Names()
	matches := fuzzy.Find(query, candidates)
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// Update runs fn with exclusive access to the document list.
func (g *Graph) Update(fn func(tx *Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&Tx{g: g})
}

// Tx is the mutable view handed to Update callbacks. It must not escape fn.
type Tx struct {
	g *Graph
}

// Match behaves like Graph.Match inside a transaction.
func (tx *Tx) Match(query string) (document.Document, bool) {
	return tx.g.match(query)
}

// Insert places doc before the first document whose name collates after it,
// or appends it when none does.
func (tx *Tx) Insert(doc document.Document) {
	g := tx.g
	idx := len(g.docs)
	for i, existing := range g.docs {
		if g.collator.CompareString(existing.Name, doc.Name) > 0 {
			idx = i
			break
		}
	}
	g.docs = append(g.docs, document.Document{})
	copy(g.docs[idx+1:], g.docs[idx:])
	g.docs[idx] = doc
}

// match applies the naming policy: in the root partition a dotless query must
// equal a name exactly; everywhere else the name must end with the query.
func (g *Graph) match(query string) (document.Document, bool) {
	exact := g.IsRoot() && !strings.Contains(query, document.Separator)
	for _, doc := range g.docs {
		if exact {
			if doc.Name == query {
				return doc, true
			}
			continue
		}
		if strings.HasSuffix(doc.Name, query) {
			return doc, true
		}
	}
	return document.Document{}, false
}

func names(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Name
	}
	return out
}
