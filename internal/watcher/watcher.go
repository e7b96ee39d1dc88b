// Package watcher imports deck list files dropped into a watched directory.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eternal-forge/eternal-forge/internal/storage"
)

// settleDelay gives the writing process time to finish before the file is
// read. Editors and downloads often produce several write events per file.
const settleDelay = 200 * time.Millisecond

// Watcher watches a directory for .txt deck lists and imports them.
type Watcher struct {
	store    *storage.Service
	dir      string
	stopChan chan struct{}

	mu       sync.Mutex
	imported map[string]time.Time // path -> last import time, to dedupe event bursts
}

// New creates a watcher over the given directory.
func New(store *storage.Service, dir string) *Watcher {
	return &Watcher{
		store:    store,
		dir:      dir,
		stopChan: make(chan struct{}),
		imported: make(map[string]time.Time),
	}
}

// Run watches the directory until the context is cancelled or Stop is
// called. Files already in the directory are imported on startup.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create watch directory: %w", err)
	}

	// Create file watcher
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.importExisting(ctx)

	log.Printf("Watching %s for deck lists", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event := <-fsw.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isDeckFile(event.Name) {
				continue
			}
			time.Sleep(settleDelay)
			w.importFile(ctx, event.Name)
		case watchErr := <-fsw.Errors:
			log.Printf("Deck watcher error: %v", watchErr)
		}
	}
}

// Stop terminates a running watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
}

// importExisting imports deck files already present in the directory.
func (w *Watcher) importExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Printf("Read watch directory: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isDeckFile(entry.Name()) {
			continue
		}
		w.importFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// importFile imports one deck list, naming the deck after the file.
func (w *Watcher) importFile(ctx context.Context, path string) {
	w.mu.Lock()
	if last, ok := w.imported[path]; ok && time.Since(last) < time.Second {
		w.mu.Unlock()
		return
	}
	w.imported[path] = time.Now()
	w.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Read deck file %s: %v", path, err)
		return
	}

	name := deckName(path)
	result, err := w.store.ImportDeckList(ctx, name, string(data))
	if err != nil {
		log.Printf("Import deck file %s: %v", path, err)
		return
	}

	log.Printf("Imported %q from %s (%d cards, %d skipped)",
		name, filepath.Base(path), result.CardsAdded, result.CardsSkipped)
	for _, warning := range result.Warnings {
		log.Printf("  %s: %s", filepath.Base(path), warning)
	}
}

func isDeckFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// deckName derives a deck name from the file name: "jennev-peaks.txt"
// becomes "jennev peaks".
func deckName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
