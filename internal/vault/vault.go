// Package vault is the storage layer: markdown documents on disk, addressed by
// slash-delimited paths relative to the vault root.
//
// Vault keeps an in-memory index of every document. Create is acknowledged:
// when the fsnotify watcher runs, Create blocks until the watcher has indexed
// the exact content that was written, so a Lookup issued right after a Create
// always observes the new document.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/logging"
)

var (
	// ErrExists is returned when Create targets a path that is already taken.
	ErrExists = errors.New("vault: document already exists")
	// ErrPathEscape is returned when a path resolves outside the vault root.
	ErrPathEscape = errors.New("vault: path escapes vault root")
	// ErrAckTimeout reports a create the watcher did not acknowledge in time
	// and whose file could not be read back either.
	ErrAckTimeout = errors.New("vault: create not acknowledged")
)

const (
	defaultAckTimeout = 2 * time.Second
	defaultLoadLimit  = 8
)

// Vault is a filesystem-backed document store.
type Vault struct {
	root       string
	logger     *slog.Logger
	ackTimeout time.Duration
	loadLimit  int

	mu      sync.RWMutex
	docs    map[string]document.Document
	waiters map[string][]*ackWaiter
	watcher *fsnotify.Watcher

	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Vault.
type Option func(*Vault)

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithAckTimeout bounds how long Create waits for the watcher.
func WithAckTimeout(timeout time.Duration) Option {
	return func(v *Vault) {
		if timeout > 0 {
			v.ackTimeout = timeout
		}
	}
}

// WithLoadConcurrency limits how many files Load reads at once.
func WithLoadConcurrency(n int) Option {
	return func(v *Vault) {
		if n > 0 {
			v.loadLimit = n
		}
	}
}

// Open indexes every document under root.
func Open(ctx context.Context, root string, opts ...Option) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	v := &Vault{
		root:       abs,
		logger:     logging.Discard(),
		ackTimeout: defaultAckTimeout,
		loadLimit:  defaultLoadLimit,
		docs:       map[string]document.Document{},
		waiters:    map[string][]*ackWaiter{},
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string { return v.root }

// Load reads all documents and replaces the index.
func (v *Vault) Load(ctx context.Context) error {
	var files []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if p != v.root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) == document.Ext {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("vault: walk %s: %w", v.root, err)
	}

	loaded := make([]document.Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.loadLimit)
	for i, abs := range files {
		i, abs := i, abs
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rel, err := v.rel(abs)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(abs)
			if err != nil {
				return fmt.Errorf("vault: read %s: %w", rel, err)
			}
			loaded[i] = document.New(rel, string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	index := make(map[string]document.Document, len(loaded))
	for _, doc := range loaded {
		index[doc.Path] = doc
	}
	v.mu.Lock()
	v.docs = index
	v.mu.Unlock()
	v.logger.Debug("vault loaded", "root", v.root, "documents", len(index))
	return nil
}

// Create writes a new document. It never overwrites an existing file.
func (v *Vault) Create(ctx context.Context, p, content string) (document.Document, error) {
	key, abs, err := v.resolve(p)
	if err != nil {
		return document.Document{}, err
	}
	v.mu.RLock()
	_, exists := v.docs[key]
	watching := v.watcher != nil
	v.mu.RUnlock()
	if exists {
		return document.Document{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return document.Document{}, fmt.Errorf("vault: ensure %s: %w", dir, err)
	}

	var waiter *ackWaiter
	if watching {
		if err := v.watchDir(dir); err != nil {
			return document.Document{}, err
		}
		waiter = v.expect(key, content)
	}
	if err := writeExclusive(abs, content); err != nil {
		v.forget(key, waiter)
		if errors.Is(err, fs.ErrExist) {
			return document.Document{}, fmt.Errorf("%w: %s", ErrExists, key)
		}
		return document.Document{}, fmt.Errorf("vault: create %s: %w", key, err)
	}

	if waiter == nil {
		v.index(document.New(key, content))
	} else if ackErr := v.await(ctx, waiter); ackErr != nil {
		v.forget(key, waiter)
		// The file is already on disk, so index it from there instead of
		// reporting a create that did happen as a failure.
		if _, err := v.indexFromDisk(key, abs); err != nil {
			return document.Document{}, errors.Join(ackErr, err)
		}
		v.logger.Warn("document create not acknowledged, indexed from disk", "path", key, "reason", ackErr)
	}
	v.logger.Info("document created", "path", key)
	doc, _ := v.get(key)
	return doc, nil
}

// Read returns the durable content of doc straight from disk.
func (v *Vault) Read(_ context.Context, doc document.Document) (string, error) {
	key, abs, err := v.resolve(doc.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", key, err)
	}
	return string(data), nil
}

// Lookup finds a document by path. A file that exists on disk but has not
// reached the index yet is indexed on the spot.
func (v *Vault) Lookup(_ context.Context, p string) (document.Document, bool, error) {
	key, abs, err := v.resolve(p)
	if err != nil {
		return document.Document{}, false, err
	}
	if doc, ok := v.get(key); ok {
		return doc, true, nil
	}
	doc, err := v.indexFromDisk(key, abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document.Document{}, false, nil
		}
		return document.Document{}, false, err
	}
	return doc, true, nil
}

// List returns every indexed document ordered by path.
func (v *Vault) List(_ context.Context) ([]document.Document, error) {
	v.mu.RLock()
	out := make([]document.Document, 0, len(v.docs))
	for _, doc := range v.docs {
		out = append(out, doc)
	}
	v.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Abs converts a vault-relative path to an absolute filesystem path.
func (v *Vault) Abs(p string) (string, error) {
	_, abs, err := v.resolve(p)
	return abs, err
}

// await blocks until the watcher acknowledges w, ctx is done or the ack
// timeout fires.
func (v *Vault) await(ctx context.Context, w *ackWaiter) error {
	timer := time.NewTimer(v.ackTimeout)
	defer timer.Stop()
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrAckTimeout
	}
}

// indexFromDisk reads key straight from the filesystem and indexes it.
func (v *Vault) indexFromDisk(key, abs string) (document.Document, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return document.Document{}, fmt.Errorf("vault: read %s: %w", key, err)
	}
	doc := document.New(key, string(data))
	v.index(doc)
	return doc, nil
}

func (v *Vault) get(key string) (document.Document, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.docs[key]
	return doc, ok
}

// index stores doc and releases create waiters that expected this content.
func (v *Vault) index(doc document.Document) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.docs[doc.Path] = doc
	pending := v.waiters[doc.Path]
	kept := pending[:0]
	for _, w := range pending {
		if w.want == doc.Content {
			close(w.ch)
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		delete(v.waiters, doc.Path)
	} else {
		v.waiters[doc.Path] = kept
	}
}

func (v *Vault) remove(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.docs, key)
}

// resolve normalizes p into an index key and an absolute path inside root.
func (v *Vault) resolve(p string) (string, string, error) {
	key := path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", "", fmt.Errorf("%w: %s", ErrPathEscape, p)
	}
	abs := filepath.Join(v.root, filepath.FromSlash(key))
	if !strings.HasPrefix(abs, v.root+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %s", ErrPathEscape, p)
	}
	return key, abs, nil
}

func (v *Vault) rel(abs string) (string, error) {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", fmt.Errorf("vault: relative path for %s: %w", abs, err)
	}
	return filepath.ToSlash(rel), nil
}

func writeExclusive(abs, content string) error {
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
