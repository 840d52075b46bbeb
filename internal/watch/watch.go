// Package watch cleans XML files as they appear in a drop directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/archive"
	"github.com/younessemlali/gerflor-xml-cleaner/internal/scrub"
)

// Options configures a watch run.
type Options struct {
	Dir      string        // directory to watch
	OutDir   string        // where cleaned files are written
	Suffix   string        // cleaned-name suffix
	Debounce time.Duration // settle time before a file is processed
}

// Run watches opts.Dir and cleans every .xml file created or written there,
// writing results to opts.OutDir under the derived name. Per-file failures are
// logged and skipped. Run blocks until ctx is cancelled.
func Run(ctx context.Context, scrubber *scrub.Scrubber, opts Options) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}
	slog.Info("watching for xml files", "dir", opts.Dir, "out", opts.OutDir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if !wantFile(ev.Name, opts) {
				continue
			}
			// Writers rarely produce a single event per file; let the
			// file settle before picking it up.
			path := ev.Name
			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(opts.Debounce, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()
				process(scrubber, path, opts)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "err", err)
		}
	}
}

// wantFile filters events down to .xml inputs, skipping our own outputs when
// the watch and output directories coincide.
func wantFile(path string, opts Options) bool {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".xml") {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(path), ext)
	return !strings.HasSuffix(base, opts.Suffix)
}

func process(scrubber *scrub.Scrubber, path string, opts Options) {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read file", "path", path, "err", err)
		return
	}

	cleaned, mods, err := scrubber.Clean(raw)
	if err != nil {
		slog.Error("clean file", "path", path, "err", err)
		return
	}

	out := filepath.Join(opts.OutDir, archive.CleanedName(path, opts.Suffix))
	if err := os.WriteFile(out, cleaned, 0o644); err != nil {
		slog.Error("write file", "path", out, "err", err)
		return
	}
	slog.Info("cleaned", "path", path, "out", out, "modifications", mods)
}
