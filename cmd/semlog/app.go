package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semlog/config"
	"github.com/c360studio/semlog/episode"
	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/export"
	"github.com/c360studio/semlog/graph"
	"github.com/c360studio/semlog/storage"
	"github.com/c360studio/semlog/timeline"
	"github.com/c360studio/semlog/trace"
)

// app holds the long-lived resources shared by episodes.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *events.Metrics

	nats       *natsclient.Client
	publisher  graph.Publisher
	store      *storage.EpisodeStore
	timelineDB *timeline.Store
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	metrics, err := events.NewMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = metrics

	if cfg.Output.TimelineDB != "" {
		db, err := timeline.Open(ctx, cfg.Output.TimelineDB, timeline.WithStoreLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open timeline db: %w", err)
		}
		a.timelineDB = db
	}

	if cfg.NATS.URL != "" {
		if err := a.connectNATS(ctx); err != nil {
			a.close(ctx)
			return nil, err
		}
	}
	return a, nil
}

func (a *app) connectNATS(ctx context.Context) error {
	client, err := connectToNATS(ctx, a.cfg.NATS.URL, a.logger)
	if err != nil {
		return err
	}
	a.nats = client
	a.publisher = client

	js, err := client.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	if _, err := graph.EnsureStream(ctx, js); err != nil {
		return err
	}
	bucket, err := storage.OpenBucket(ctx, js, a.cfg.NATS.Bucket)
	if err != nil {
		return err
	}
	a.store = storage.NewEpisodeStore(bucket)
	return nil
}

func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Start a server or unset nats.url (SEMLOG_NATS_URL) to log to files only.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func (a *app) close(ctx context.Context) {
	if a.timelineDB != nil {
		if err := a.timelineDB.Close(); err != nil {
			a.logger.Warn("Failed to close timeline db", "error", err)
		}
	}
	if a.nats != nil {
		if err := a.nats.Close(ctx); err != nil {
			a.logger.Warn("Failed to close NATS", "error", err)
		}
	}
}

// sinks returns the finalize sinks enabled by the configuration.
func (a *app) sinks() []episode.Sink {
	sinks := []episode.Sink{&episode.FileSink{
		Dir:       a.cfg.Output.Dir,
		Formats:   a.cfg.OutputFormats(),
		Timelines: a.cfg.Output.Timelines,
		Logger:    a.logger,
	}}
	if a.timelineDB != nil {
		sinks = append(sinks, &episode.TimelineStoreSink{Store: a.timelineDB})
	}
	if a.store != nil {
		sinks = append(sinks, &episode.StoreSink{Store: a.store, Format: export.FormatRDFXML})
	}
	if a.publisher != nil {
		sinks = append(sinks, &episode.GraphSink{Client: a.publisher, Logger: a.logger})
	}
	return sinks
}

// newEpisode creates an episode logger wired to the configured sinks.
func (a *app) newEpisode(ctx context.Context, id string) *episode.Logger {
	cfg := a.cfg
	l := episode.New(id,
		episode.WithLogger(a.logger),
		episode.WithMetrics(a.metrics),
		episode.WithSemanticMap(cfg.Episode.SemanticMap),
		episode.WithSuffixLength(cfg.Episode.SuffixLength),
		episode.WithNameAttempts(cfg.Events.NameAttempts),
		episode.WithKinds(cfg.EnabledKinds()...),
		episode.WithSupport(cfg.Support.SpeedThreshold, cfg.Support.EvaluateEvery, cfg.Support.MinContact),
		episode.WithUpdateRate(cfg.Furniture.UpdateRate),
		episode.WithSinks(a.sinks()...),
	)
	if cfg.NATS.Publish && a.publisher != nil {
		pub := graph.NewEpisodePublisher(a.publisher, l.ID(), l.Document(), a.logger)
		l.OnClose(pub.Listener(ctx))
	}
	return l
}

// replay feeds one trace into a new episode and finalizes it at the last
// record time unless the trace finalizes itself. Record errors are logged
// and skipped. A cancelled context stops reading but still finalizes the
// episode; the result is returned together with the cancellation error.
func (a *app) replay(ctx context.Context, r io.Reader, id string) (*episode.Result, error) {
	l := a.newEpisode(ctx, id)
	log := a.logger.With("episode", l.ID())

	reader := trace.NewReader(r)
	last := 0.0
	var cancelled error
	for {
		if err := ctx.Err(); err != nil {
			log.Warn("Replay interrupted, finalizing episode", "t", last, "error", err)
			cancelled = err
			break
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, trace.ErrInvalidRecord) {
			log.Warn("Skipping trace line", "line", reader.Line(), "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.T > last {
			last = rec.T
		}
		if err := l.Apply(ctx, rec); err != nil {
			if errors.Is(err, episode.ErrFinalized) {
				log.Warn("Record after finalize ignored", "line", reader.Line())
				continue
			}
			if rec.Type == trace.TypeFinalize {
				log.Error("Finalize reported sink errors", "error", err)
				continue
			}
			log.Warn("Record rejected", "line", reader.Line(), "type", rec.Type, "error", err)
		}
	}

	if res := l.Result(); res != nil {
		return res, cancelled
	}
	res, err := l.Finalize(context.WithoutCancel(ctx), last)
	if err != nil && res != nil {
		log.Error("Finalize reported sink errors", "error", err)
		return res, cancelled
	}
	if err != nil {
		return res, errors.Join(cancelled, err)
	}
	return res, cancelled
}
