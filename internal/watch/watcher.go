// Package watch re-runs an extraction whenever the bundle changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"unbundle/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one extraction. Runs never overlap.
type RunFunc func(ctx context.Context) error

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Runs          int
	Failures      int
	Errors        int
	LastEventTime time.Time
	LastEventType string
	LastRunErr    error
}

// BundleWatcher watches one bundle file. It watches the file's directory
// rather than the file itself so that editors and build tools that replace
// the file by rename are still seen.
type BundleWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	run         RunFunc
	pending     time.Time // zero when nothing is pending
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// NewBundleWatcher creates a watcher for path that calls run once the file
// has been quiet for debounce.
func NewBundleWatcher(path string, debounce time.Duration, run RunFunc) (*BundleWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &BundleWatcher{
		watcher:     watcher,
		path:        abs,
		dir:         filepath.Dir(abs),
		run:         run,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. This method is non-blocking; events are handled on
// one background goroutine until ctx is done or Stop is called.
func (bw *BundleWatcher) Start(ctx context.Context) error {
	bw.mu.Lock()
	if bw.running {
		bw.mu.Unlock()
		return nil // Already running
	}
	bw.running = true
	bw.mu.Unlock()

	if err := bw.watcher.Add(bw.dir); err != nil {
		bw.mu.Lock()
		bw.running = false
		bw.mu.Unlock()
		return fmt.Errorf("watch %s: %w", bw.dir, err)
	}
	logging.Watch("watching %s", bw.path)

	go bw.loop(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (bw *BundleWatcher) Stop() {
	bw.mu.Lock()
	if !bw.running {
		bw.mu.Unlock()
		_ = bw.watcher.Close()
		return
	}
	bw.running = false
	bw.mu.Unlock()

	close(bw.stopCh)
	<-bw.doneCh

	if err := bw.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	logging.Watch("stopped")
}

// Done is closed when the event loop exits.
func (bw *BundleWatcher) Done() <-chan struct{} {
	return bw.doneCh
}

// Stats returns a snapshot of the watcher's counters.
func (bw *BundleWatcher) Stats() Stats {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	return bw.stats
}

func (bw *BundleWatcher) loop(ctx context.Context) {
	defer close(bw.doneCh)

	// Debounce timer for batching rapid changes
	ticker := time.NewTicker(bw.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-bw.stopCh:
			logging.WatchDebug("stop signal received")
			return

		case event, ok := <-bw.watcher.Events:
			if !ok {
				logging.WatchDebug("event channel closed")
				return
			}
			bw.handleEvent(event)

		case err, ok := <-bw.watcher.Errors:
			if !ok {
				logging.WatchDebug("error channel closed")
				return
			}
			logging.WatchError("watcher error: %v", err)
			bw.mu.Lock()
			bw.stats.Errors++
			bw.mu.Unlock()

		case <-ticker.C:
			bw.processPending(ctx)
		}
	}
}

func (bw *BundleWatcher) tick() time.Duration {
	t := bw.debounceDur / 5
	if t < 10*time.Millisecond {
		t = 10 * time.Millisecond
	}
	if t > 100*time.Millisecond {
		t = 100 * time.Millisecond
	}
	return t
}

func (bw *BundleWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != bw.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	default:
		return // Ignore chmod
	}
	logging.WatchDebug("%s event for %s", eventType, event.Name)

	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.stats.Events++
	bw.stats.LastEventTime = time.Now()
	bw.stats.LastEventType = eventType
	if eventType == "delete" || eventType == "rename" {
		// Wait for the replacement to appear.
		return
	}
	bw.pending = time.Now()
}

func (bw *BundleWatcher) processPending(ctx context.Context) {
	bw.mu.Lock()
	if bw.pending.IsZero() || time.Since(bw.pending) < bw.debounceDur {
		bw.mu.Unlock()
		return
	}
	bw.pending = time.Time{}
	bw.mu.Unlock()

	logging.Watch("change detected, re-running extraction for %s", bw.path)
	err := bw.run(ctx)

	bw.mu.Lock()
	bw.stats.Runs++
	bw.stats.LastRunErr = err
	if err != nil {
		bw.stats.Failures++
	}
	bw.mu.Unlock()

	if err != nil {
		logging.WatchError("extraction failed: %v", err)
	}
}
