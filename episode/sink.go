package episode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/semlog/export"
	"github.com/c360studio/semlog/graph"
	"github.com/c360studio/semlog/storage"
	"github.com/c360studio/semlog/timeline"
)

// Sink receives the sealed result of an episode. Sinks must treat the
// document as read-only.
type Sink interface {
	Name() string
	Consume(ctx context.Context, res *Result) error
}

// DocumentFileName returns EventData_<episode><ext>.
func DocumentFileName(episodeID string, format export.Format) string {
	ext := ".owl"
	if info, ok := export.GetFormatInfo(format); ok {
		ext = info.Extension
	}
	return "EventData_" + episodeID + ext
}

// TimelineFileName returns Timelines_<episode>.html.
func TimelineFileName(episodeID string) string {
	return "Timelines_" + episodeID + ".html"
}

// FileSink writes the document and the optional timeline chart to Dir.
type FileSink struct {
	Dir       string
	Formats   []export.Format
	Timelines bool
	Logger    *slog.Logger
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Consume(_ context.Context, res *Result) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	formats := s.Formats
	if len(formats) == 0 {
		formats = []export.Format{export.FormatRDFXML}
	}

	for _, format := range formats {
		out, err := export.ExportAs(res.Document, format)
		if err != nil {
			return err
		}
		path := filepath.Join(s.Dir, DocumentFileName(res.EpisodeID, format))
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		s.logger().Info("Wrote episode document", "path", path, "format", string(format))
	}

	if s.Timelines {
		path := filepath.Join(s.Dir, TimelineFileName(res.EpisodeID))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := timeline.WriteHTML(f, "Episode "+res.EpisodeID, res.Rows); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		s.logger().Info("Wrote timeline", "path", path, "rows", len(res.Rows))
	}
	return nil
}

func (s *FileSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// StoreSink keeps the serialized document in the episode KV store.
type StoreSink struct {
	Store  *storage.EpisodeStore
	Format export.Format
}

func (s *StoreSink) Name() string { return "kv" }

func (s *StoreSink) Consume(ctx context.Context, res *Result) error {
	format := s.Format
	if format == "" {
		format = export.FormatRDFXML
	}
	out, err := export.ExportAs(res.Document, format)
	if err != nil {
		return err
	}
	return s.Store.Save(ctx, &storage.EpisodeRecord{
		EpisodeID: res.EpisodeID,
		Format:    string(format),
		Document:  out,
		Events:    res.Events(),
		Objects:   res.Objects(),
		Start:     res.Start,
		End:       res.End,
	})
}

// GraphSink publishes every individual to the graph ingest stream.
type GraphSink struct {
	Client graph.Publisher
	Logger *slog.Logger
}

func (s *GraphSink) Name() string { return "graph" }

func (s *GraphSink) Consume(ctx context.Context, res *Result) error {
	n, err := graph.NewEpisodePublisher(s.Client, res.EpisodeID, res.Document, s.Logger).PublishDocument(ctx)
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("Published episode individuals", "count", n)
	}
	return nil
}

// TimelineStoreSink persists interval rows in the sqlite timeline store.
type TimelineStoreSink struct {
	Store *timeline.Store
}

func (s *TimelineStoreSink) Name() string { return "timeline-db" }

func (s *TimelineStoreSink) Consume(ctx context.Context, res *Result) error {
	return s.Store.SaveEpisode(ctx, res.EpisodeID, res.Rows)
}
