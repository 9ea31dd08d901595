package ml

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ArtifactWatcher reloads the lifecycle's published artifact when the
// artifact file changes on disk, so an out-of-process retrain is picked up
// without restarting the server. It watches the parent directory because
// saves replace the file via rename.
type ArtifactWatcher struct {
	lifecycle *Lifecycle
	path      string
	stopChan  chan struct{}
}

// NewArtifactWatcher creates a watcher for the artifact at path.
func NewArtifactWatcher(lifecycle *Lifecycle, path string) *ArtifactWatcher {
	return &ArtifactWatcher{
		lifecycle: lifecycle,
		path:      path,
		stopChan:  make(chan struct{}),
	}
}

// Watch blocks until the context is canceled or Stop is called, reloading the
// artifact on file changes. Reloads are debounced so a save producing several
// events triggers a single reload.
func (w *ArtifactWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create artifact watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch artifact directory: %w", err)
	}

	var debounce *time.Timer
	var reloadCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(500 * time.Millisecond)
			reloadCh = debounce.C
		case <-reloadCh:
			reloadCh = nil
			if err := w.lifecycle.Reload(); err != nil {
				log.Printf("Artifact reload failed: %v", err)
			} else {
				log.Printf("Artifact reloaded from %s", w.path)
			}
		case err := <-watcher.Errors:
			log.Printf("Artifact watcher error: %v", err)
		}
	}
}

// Stop ends the watch loop.
func (w *ArtifactWatcher) Stop() {
	close(w.stopChan)
}
