package vault

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/kingrea/lineage/internal/document"
)

// Memory is an in-memory store with the same contract as Vault. It backs
// dry runs and tests.
type Memory struct {
	mu         sync.RWMutex
	docs       map[string]document.Document
	created    []string
	failCreate error
}

// NewMemory seeds a store with docs.
func NewMemory(docs ...document.Document) *Memory {
	m := &Memory{docs: make(map[string]document.Document, len(docs))}
	for _, doc := range docs {
		m.docs[cleanKey(doc.Path)] = doc
	}
	return m
}

// Put inserts or replaces a document without recording a create, the way an
// external edit would.
func (m *Memory) Put(doc document.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.Path = cleanKey(doc.Path)
	m.docs[doc.Path] = doc
}

// FailCreates makes every following Create return err (nil clears it).
func (m *Memory) FailCreates(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreate = err
}

// Created lists the paths passed to successful Create calls, in order.
func (m *Memory) Created() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.created...)
}

// Create stores a new document.
func (m *Memory) Create(ctx context.Context, p, content string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}
	key := cleanKey(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return document.Document{}, m.failCreate
	}
	if _, ok := m.docs[key]; ok {
		return document.Document{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	doc := document.New(key, content)
	m.docs[key] = doc
	m.created = append(m.created, key)
	return doc, nil
}

// Read returns the stored content of doc.
func (m *Memory) Read(_ context.Context, doc document.Document) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.docs[cleanKey(doc.Path)]
	if !ok {
		return "", fmt.Errorf("vault: read %s: %w", doc.Path, fs.ErrNotExist)
	}
	return stored.Content, nil
}

// Lookup finds a document by path.
func (m *Memory) Lookup(_ context.Context, p string) (document.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[cleanKey(p)]
	return doc, ok, nil
}

// List returns every document ordered by path.
func (m *Memory) List(_ context.Context) ([]document.Document, error) {
	m.mu.RLock()
	out := make([]document.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func cleanKey(p string) string {
	return path.Clean(strings.TrimPrefix(p, "/"))
}
