package timeline

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrEpisodeNotFound is returned for unknown episode ids.
var ErrEpisodeNotFound = errors.New("episode not found")

// Store persists episode timelines in sqlite.
type Store struct {
	db *gorm.DB
}

// StoreOption configures Open.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger *slog.Logger
}

// WithStoreLogger routes migration output to l at debug level.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Open opens (or creates) the sqlite database at path and applies
// migrations.
func Open(ctx context.Context, path string, opts ...StoreOption) (*Store, error) {
	o := storeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open timeline db: %w", err)
	}
	if err := RunMigrations(ctx, db, o.logger); err != nil {
		return nil, fmt.Errorf("migrate timeline db: %w", err)
	}
	return &Store{db: db}, nil
}

// gooseMu guards the package-level goose settings.
var gooseMu sync.Mutex

// gooseLogger adapts slog to the goose logger.
type gooseLogger struct {
	logger *slog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

// RunMigrations applies the embedded migrations, logging through l.
func RunMigrations(ctx context.Context, db *gorm.DB, l *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if l == nil {
		l = slog.Default()
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(gooseLogger{logger: l})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return err
	}

	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveEpisode stores the rows of an episode, replacing earlier rows of the
// same episode.
func (s *Store) SaveEpisode(ctx context.Context, episodeID string, rows []Row) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ep EpisodeModel
		err := tx.Where("episode_id = ?", episodeID).First(&ep).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ep = EpisodeModel{EpisodeID: episodeID}
			if err := tx.Create(&ep).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Where("episode_id = ?", episodeID).Delete(&IntervalModel{}).Error; err != nil {
				return err
			}
			if err := tx.Save(&ep).Error; err != nil {
				return err
			}
		}

		if len(rows) == 0 {
			return nil
		}
		models := make([]IntervalModel, 0, len(rows))
		for i, r := range rows {
			models = append(models, IntervalModel{
				EpisodeID: episodeID,
				Seq:       i,
				Name:      r.Name,
				Kind:      r.Kind,
				EventKey:  r.Key,
				Start:     r.Start,
				End:       r.End,
				Forced:    r.Forced,
			})
		}
		return tx.Create(&models).Error
	})
}

// Rows returns the rows of an episode in closing order.
func (s *Store) Rows(ctx context.Context, episodeID string) ([]Row, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&EpisodeModel{}).Where("episode_id = ?", episodeID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEpisodeNotFound, episodeID)
	}

	models := make([]IntervalModel, 0)
	if err := s.db.WithContext(ctx).Where("episode_id = ?", episodeID).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(models))
	for _, m := range models {
		out = append(out, Row{Name: m.Name, Kind: m.Kind, Key: m.EventKey, Start: m.Start, End: m.End, Forced: m.Forced})
	}
	return out, nil
}

// Episodes lists stored episode ids, newest first.
func (s *Store) Episodes(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	models := make([]EpisodeModel, 0)
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, m.EpisodeID)
	}
	return out, nil
}

// KindTotals returns the summed interval duration per kind of an episode.
func (s *Store) KindTotals(ctx context.Context, episodeID string) (map[string]float64, error) {
	type total struct {
		Kind  string
		Total float64
	}
	var totals []total
	err := s.db.WithContext(ctx).Model(&IntervalModel{}).
		Select("kind, SUM(end_time - start_time) AS total").
		Where("episode_id = ?", episodeID).
		Group("kind").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(totals))
	for _, t := range totals {
		out[t.Kind] = t.Total
	}
	return out, nil
}
