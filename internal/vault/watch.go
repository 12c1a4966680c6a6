package vault

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/kingrea/lineage/internal/document"
)

// ackWaiter is released once the index holds want at its path.
type ackWaiter struct {
	want string
	ch   chan struct{}
}

// Watch keeps the index in sync with the filesystem until ctx is cancelled
// or Close is called. Once watching, Create waits for the watcher to
// acknowledge every new document.
func (v *Vault) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("vault: create watcher: %w", err)
	}
	if err := addWatcherDirs(watcher, v.root); err != nil {
		watcher.Close()
		return fmt.Errorf("vault: watch %s: %w", v.root, err)
	}
	v.mu.Lock()
	if v.watcher != nil {
		v.mu.Unlock()
		watcher.Close()
		return fmt.Errorf("vault: already watching %s", v.root)
	}
	v.watcher = watcher
	v.mu.Unlock()

	go v.watchLoop(ctx, watcher)
	return nil
}

// Close stops the watcher. Pending creates index their file from disk once
// their ack timeout fires.
func (v *Vault) Close() error {
	var err error
	v.stopOnce.Do(func() {
		close(v.done)
		v.mu.Lock()
		watcher := v.watcher
		v.watcher = nil
		v.mu.Unlock()
		if watcher != nil {
			err = watcher.Close()
		}
	})
	return err
}

func (v *Vault) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			_ = v.Close()
			return
		case <-v.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			v.handleEvent(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			v.logger.Warn("vault watcher error", "error", err)
		}
	}
}

func (v *Vault) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	rel, err := v.rel(event.Name)
	if err != nil || hiddenPath(rel) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addWatcherDirs(watcher, event.Name); err != nil {
				v.logger.Warn("vault watch directory failed", "path", rel, "error", err)
			}
			return
		}
	}
	if filepath.Ext(event.Name) != document.Ext {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		data, err := os.ReadFile(event.Name)
		if err != nil {
			v.logger.Warn("vault reindex failed", "path", rel, "error", err)
			return
		}
		v.index(document.New(rel, string(data)))
		v.logger.Debug("vault reindexed", "path", rel)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename shows up again as a Create under the new name.
		v.remove(rel)
		v.logger.Debug("vault removed", "path", rel)
	}
}

// expect registers a waiter before the file is written so the event cannot
// be missed.
func (v *Vault) expect(key, content string) *ackWaiter {
	w := &ackWaiter{want: content, ch: make(chan struct{})}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.waiters[key] = append(v.waiters[key], w)
	return w
}

func (v *Vault) forget(key string, w *ackWaiter) {
	if w == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	pending := v.waiters[key]
	for i, candidate := range pending {
		if candidate == w {
			pending = append(pending[:i], pending[i+1:]...)
			break
		}
	}
	if len(pending) == 0 {
		delete(v.waiters, key)
	} else {
		v.waiters[key] = pending
	}
}

// watchDir makes sure a directory created by Create is watched before the
// file inside it is written.
func (v *Vault) watchDir(dir string) error {
	v.mu.RLock()
	watcher := v.watcher
	v.mu.RUnlock()
	if watcher == nil {
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("vault: watch %s: %w", dir, err)
	}
	return nil
}

// addWatcherDirs recursively adds directories, skipping hidden ones.
func addWatcherDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func hiddenPath(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if isHidden(segment) && segment != "." {
			return true
		}
	}
	return false
}
