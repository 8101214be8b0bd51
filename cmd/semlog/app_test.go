package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/config"
)

const kitchenTrace = `# kitchen episode
{"type":"joint","object":{"class":"Drawer","id":"1"},"axis":"linear","limit":0.4}
{"type":"sample","t":0,"object":{"class":"Drawer","id":"1"},"value":0}
{"type":"tick","t":0}
{"type":"begin","kind":"Contact","t":0.30,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
{"type":"end","kind":"Contact","t":0.33,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
not json
{"type":"end","kind":"Grasp","t":0.4,"a":{"class":"Hand","id":"R"},"b":{"class":"Cup","id":"1"}}
{"type":"sample","t":1,"object":{"class":"Drawer","id":"1"},"value":0.39}
{"type":"tick","t":1}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Formats = []string{"rdfxml", "ntriples"}
	cfg.Output.Timelines = true
	cfg.Output.TimelineDB = filepath.Join(t.TempDir(), "timeline.db")
	require.NoError(t, cfg.Validate())

	a, err := newApp(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.close(context.Background()) })
	return a
}

func TestReplayTrace(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)

	res, err := a.replay(ctx, strings.NewReader(kitchenTrace), "kitchen")
	require.NoError(t, err)
	assert.Equal(t, "kitchen", res.EpisodeID)
	assert.Equal(t, 1.0, res.End)
	// contact plus two drawer states
	assert.Equal(t, 3, res.Events())
	assert.Equal(t, 1, res.Forced)

	out := a.cfg.Output.Dir
	owlFile, err := os.ReadFile(filepath.Join(out, "EventData_kitchen.owl"))
	require.NoError(t, err)
	assert.Contains(t, string(owlFile), "FurnitureStateOpened_")
	assert.FileExists(t, filepath.Join(out, "EventData_kitchen.nt"))
	assert.FileExists(t, filepath.Join(out, "Timelines_kitchen.html"))

	rows, err := a.timelineDB.Rows(ctx, "kitchen")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReplayHonoursFinalizeRecord(t *testing.T) {
	a := testApp(t)
	trace := `{"type":"begin","kind":"Contact","t":1,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
{"type":"finalize","t":2}
{"type":"end","kind":"Contact","t":3,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
`
	res, err := a.replay(context.Background(), strings.NewReader(trace), "fin")
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.End)
	assert.Equal(t, 1, res.Forced)
}

// cancelOnRead cancels the replay context as soon as the trace is read.
type cancelOnRead struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancelOnRead) Read(p []byte) (int, error) {
	c.cancel()
	return c.r.Read(p)
}

func TestReplayCancelledFinalizesEpisode(t *testing.T) {
	a := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trace := `{"type":"begin","kind":"Contact","t":1,"a":{"class":"Cup","id":"1"},"b":{"class":"Table","id":"2"}}
{"type":"tick","t":5}
`
	res, err := a.replay(ctx, &cancelOnRead{r: strings.NewReader(trace), cancel: cancel}, "cut")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Events())
	assert.Equal(t, 1, res.Forced)
	assert.Equal(t, 1.0, res.End)

	owlFile, err := os.ReadFile(filepath.Join(a.cfg.Output.Dir, "EventData_cut.owl"))
	require.NoError(t, err)
	assert.Contains(t, string(owlFile), "TouchingSituation_")

	rows, err := a.timelineDB.Rows(context.Background(), "cut")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Forced)
}

func TestReplayCancelledBeforeStart(t *testing.T) {
	a := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := a.replay(ctx, strings.NewReader(kitchenTrace), "x")
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Events())
	assert.FileExists(t, filepath.Join(a.cfg.Output.Dir, "EventData_x.owl"))
}

func TestExpandTraces(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jsonl", "b.jsonl", "sub/c.jsonl", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}

	paths, err := expandTraces([]string{
		filepath.Join(dir, "**", "*.jsonl"),
		filepath.Join(dir, "a.jsonl"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jsonl"),
		filepath.Join(dir, "b.jsonl"),
		filepath.Join(dir, "sub", "c.jsonl"),
	}, paths)
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "ep.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(kitchenTrace), 0644))
	cfgPath := filepath.Join(dir, "semlog.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("episode:\n  id: cli\n"), 0644))
	outDir := filepath.Join(dir, "out")

	cmd := rootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"replay", "--config", cfgPath, "--log-level", "error", "-o", outDir, tracePath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stdout.String(), "episode cli, 3 events")
	assert.FileExists(t, filepath.Join(outDir, "EventData_cli.owl"))
}

func TestReplayCommandNoMatches(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"replay", "--log-level", "error", filepath.Join(t.TempDir(), "*.jsonl")})
	assert.ErrorContains(t, cmd.Execute(), "no trace files")
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "semlog version "+Version)
}

func TestMetricsServer(t *testing.T) {
	a := testApp(t)
	_, err := a.replay(context.Background(), strings.NewReader(kitchenTrace), "m")
	require.NoError(t, err)

	srv := httptest.NewServer(newMetricsServer(":0", a.registry).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "semlog_events_")

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestTraceWatcherDebounce(t *testing.T) {
	dir := t.TempDir()
	w, err := newTraceWatcher(dir, defaultTracePattern, time.Second, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "ep.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(kitchenTrace), 0644))
	now := time.Now()

	w.handle(fsnotify.Event{Name: filepath.Join(dir, "ignored.txt"), Op: fsnotify.Create}, now)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Create}, now)
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write}, now.Add(500*time.Millisecond))

	assert.Empty(t, w.flush(now.Add(time.Second)), "still settling")
	assert.Equal(t, []string{path}, w.flush(now.Add(2*time.Second)))

	// unchanged file is not reported twice
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write}, now)
	assert.Empty(t, w.flush(now.Add(3*time.Second)))
}

func TestTraceWatcherExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte("{}"), 0644))

	w, err := newTraceWatcher(dir, defaultTracePattern, 0, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	paths, err := w.Existing()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.jsonl"), filepath.Join(dir, "b.jsonl")}, paths)

	_, err = newTraceWatcher(filepath.Join(dir, "a.jsonl"), defaultTracePattern, 0, quietLogger())
	assert.ErrorContains(t, err, "not a directory")
}
