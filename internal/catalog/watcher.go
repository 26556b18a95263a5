package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ingesta/internal/core/domain"
)

const (
	// eventBuffer bounds pending emissions while the consumer catches up.
	eventBuffer = 100

	// defaultQuietWindow is how long a path must stay quiet before it
	// is emitted. Copies and downloads arrive as a burst of writes; a
	// path is only worth ingesting once the burst has settled.
	defaultQuietWindow = 500 * time.Millisecond
)

// Watcher emits candidate file paths as they are created or modified
// under a watched directory, filtered by the catalog's policy
// extensions. Events for the same path are coalesced: a path is
// emitted once, after no new event has arrived for the quiet window,
// so a file written in several flushes surfaces as one candidate.
// It is a discovery aid for re-ingestion; the consumer decides when
// to ingest.
type Watcher struct {
	watcher *fsnotify.Watcher
	policy  domain.Policy
	quiet   time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithQuietWindow sets how long a path must be quiet before emission.
func WithQuietWindow(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// NewWatcher creates a watcher filtered by the given policy.
func NewWatcher(policy domain.Policy, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{watcher: fsw, policy: policy.Normalised(), quiet: defaultQuietWindow}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring dir and returns a channel of settled file
// paths. The channel closes when ctx is cancelled or the underlying
// watcher stops.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	paths := make(chan string, eventBuffer)

	go func() {
		defer close(paths)

		// pending maps each active path to the deadline after which
		// it counts as settled. The timer fires at the earliest one.
		pending := make(map[string]time.Time)
		timer := time.NewTimer(w.quiet)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !w.policy.Allows(strings.ToLower(filepath.Ext(event.Name))) {
					continue
				}
				pending[event.Name] = time.Now().Add(w.quiet)
				resetToEarliest(timer, pending)
			case <-timer.C:
				now := time.Now()
				for path, due := range pending {
					if now.Before(due) {
						continue
					}
					delete(pending, path)
					select {
					case paths <- path:
					case <-ctx.Done():
						return
					}
				}
				resetToEarliest(timer, pending)
			case _, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				// Watch errors are transient; keep watching.
			}
		}
	}()

	return paths, nil
}

// resetToEarliest arms the timer for the earliest pending deadline,
// so a path already due is never held back by traffic on another.
func resetToEarliest(timer *time.Timer, pending map[string]time.Time) {
	var next time.Time
	for _, due := range pending {
		if next.IsZero() || due.Before(next) {
			next = due
		}
	}
	if !next.IsZero() {
		timer.Reset(time.Until(next))
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
