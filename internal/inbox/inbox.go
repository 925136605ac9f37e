// Package inbox watches a directory and reviews reports dropped into it.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"eightd/internal/audit"
	"eightd/internal/ingest"
	"eightd/internal/logging"
	"eightd/internal/report"
)

// DefaultDebounce is the settle time after the last write to a file.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) (*audit.Outcome, error)

// Stats tracks watcher activity.
type Stats struct {
	Seen          int
	Reviewed      int
	Approved      int
	Rejected      int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher debounces create/write events in one directory and hands each
// settled report to a Handler.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	handle   Handler
	debounce time.Duration
	pending  map[string]time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stats    Stats
}

// New returns a Watcher for dir. A non-positive debounce uses DefaultDebounce.
func New(dir string, debounce time.Duration, handle Handler) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		handle:   handle,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Eligible reports whether path is a report the watcher should review.
// Office lock files and generated review files are skipped.
func Eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") || strings.HasPrefix(base, report.FilePrefix) {
		return false
	}
	return ingest.Supported(base)
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logging.New("inbox").Info("watching", "dir", w.dir, "debounce", w.debounce)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.New("inbox").Error("close watcher", "error", err)
	}
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func tickInterval(debounce time.Duration) time.Duration {
	return min(max(debounce/2, 10*time.Millisecond), 100*time.Millisecond)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	log := logging.New("inbox")

	ticker := time.NewTicker(tickInterval(w.debounce))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.observe(ev, time.Now())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error("watch error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case now := <-ticker.C:
			w.processDue(ctx, now)
		}
	}
}

// observe records create/write events for eligible files.
func (w *Watcher) observe(ev fsnotify.Event, at time.Time) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !Eligible(ev.Name) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[ev.Name]; !ok {
		w.stats.Seen++
	}
	w.pending[ev.Name] = at
	w.stats.LastEventPath = ev.Name
	w.stats.LastEventTime = at
	return true
}

// processDue hands every file quiet for at least the debounce window to
// the handler.
func (w *Watcher) processDue(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	log := logging.New("inbox")
	for _, path := range due {
		if ctx.Err() != nil {
			return
		}
		out, err := w.handle(ctx, path)
		w.mu.Lock()
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debug("file gone before review", "file", path)
		case err != nil:
			w.stats.Errors++
			log.Warn("review failed", "file", path, "error", err)
		default:
			w.stats.Reviewed++
			if out.Verdict.OverallPassed {
				w.stats.Approved++
			} else {
				w.stats.Rejected++
			}
		}
		w.mu.Unlock()
	}
}

// ReviewAndSave returns a Handler that reviews the file and writes the
// markdown review to outputDir, or next to the file when outputDir is empty.
// Unattended reviews never require a logic audit.
func ReviewAndSave(a *audit.Auditor, r *report.Renderer, outputDir string) Handler {
	return func(_ context.Context, path string) (*audit.Outcome, error) {
		out, err := a.Review(path)
		if err != nil {
			return nil, err
		}
		res, err := r.Save(out, report.SaveOptions{OutputDir: outputDir})
		if err != nil {
			return nil, err
		}
		logging.New("inbox").Info("review written", "file", path, "report", res.SavedPath, "verdict", out.Verdict.Banner())
		return out, nil
	}
}
