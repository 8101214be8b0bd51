package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const defaultTracePattern = "*.jsonl"

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		pattern  string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Replay trace files as they appear in a directory",
		Long: `Watch replays every trace file written to dir once it stops changing.
Existing files are replayed on start. With metrics.addr set, prometheus
metrics are served on /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.logLevel)
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if cfg.Metrics.Addr != "" {
				srv := newMetricsServer(cfg.Metrics.Addr, a.registry)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Metrics server failed", "error", err)
					}
				}()
				defer srv.Close()
				logger.Info("Serving metrics", "addr", cfg.Metrics.Addr)
			}

			w, err := newTraceWatcher(args[0], pattern, debounce, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			existing, err := w.Existing()
			if err != nil {
				return err
			}
			for _, path := range existing {
				a.replayPath(ctx, path)
			}

			go w.Run(ctx)
			for path := range w.Ready() {
				a.replayPath(ctx, path)
			}
			logger.Info("Watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", defaultTracePattern, "Trace file glob, relative to dir")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is replayed")
	return cmd
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// replayPath replays one file, logging instead of failing.
func (a *app) replayPath(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		a.logger.Warn("Failed to open trace", "path", path, "error", err)
		return
	}
	defer f.Close()

	res, err := a.replay(ctx, f, "")
	if err != nil {
		a.logger.Error("Replay failed", "path", path, "error", err)
		if res == nil {
			return
		}
	}
	a.logger.Info("Episode logged", "path", path, "episode", res.EpisodeID,
		"events", res.Events(), "objects", res.Objects())
}

// traceWatcher reports trace files once they have been quiet for the
// debounce period. A file is reported again only after it changes.
type traceWatcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	seen    map[string]fileStamp

	ready chan string
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func newTraceWatcher(dir, pattern string, debounce time.Duration, logger *slog.Logger) (*traceWatcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &traceWatcher{
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]time.Time),
		seen:     make(map[string]fileStamp),
		ready:    make(chan string, 64),
	}, nil
}

// Ready returns the channel of quiet trace files. It is closed when Run
// returns.
func (w *traceWatcher) Ready() <-chan string { return w.ready }

// Close stops watching.
func (w *traceWatcher) Close() error { return w.watcher.Close() }

// matches reports whether path is a trace file of the watched dir.
func (w *traceWatcher) matches(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.PathMatch(w.pattern, rel)
	return ok
}

// Existing returns the trace files already present, marking them seen.
func (w *traceWatcher) Existing() ([]string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(w.dir, w.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	var out []string
	for _, m := range matches {
		if w.markSeen(m) {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// markSeen records the current stamp of path and reports whether it
// changed since the last report.
func (w *traceWatcher) markSeen(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.seen[path]; ok && prev == stamp {
		return false
	}
	w.seen[path] = stamp
	return true
}

// Run processes fsnotify events until ctx is done.
func (w *traceWatcher) Run(ctx context.Context) {
	defer close(w.ready)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event, time.Now())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case now := <-ticker.C:
			for _, path := range w.flush(now) {
				select {
				case w.ready <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (w *traceWatcher) handle(event fsnotify.Event, now time.Time) {
	if !w.matches(event.Name) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, event.Name)
		delete(w.seen, event.Name)
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		w.pending[event.Name] = now
		w.logger.Debug("Trace change detected", "path", event.Name, "op", event.Op.String())
	}
}

// flush returns pending files that have been quiet for the debounce period.
func (w *traceWatcher) flush(now time.Time) []string {
	w.mu.Lock()
	var quiet []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			quiet = append(quiet, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(quiet)
	out := quiet[:0]
	for _, path := range quiet {
		if w.markSeen(path) {
			out = append(out, path)
		}
	}
	return out
}
