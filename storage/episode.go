// Package storage keeps finalized episode documents in a NATS KV bucket.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EpisodeRecord is one stored episode document.
type EpisodeRecord struct {
	ID        string    `json:"id"`
	EpisodeID string    `json:"episode_id"`
	Format    string    `json:"format"`
	Document  string    `json:"document"`
	Events    int       `json:"events"`
	Objects   int       `json:"objects"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// EpisodeStore stores episode records keyed by episode ID.
type EpisodeStore struct {
	bucket Bucket
	now    func() time.Time
}

// NewEpisodeStore creates a store over bucket.
func NewEpisodeStore(bucket Bucket) *EpisodeStore {
	return &EpisodeStore{bucket: bucket, now: time.Now}
}

// recordKey makes an episode ID safe as a KV key.
func recordKey(episodeID string) string {
	return strings.NewReplacer(" ", "_", "*", "_", ">", "_", "/", "_").Replace(episodeID)
}

// Save stores rec, replacing any earlier record of the same episode.
func (s *EpisodeStore) Save(ctx context.Context, rec *EpisodeRecord) error {
	if rec.EpisodeID == "" {
		return errors.New("episode ID is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal episode: %w", err)
	}
	if err := s.bucket.Put(ctx, recordKey(rec.EpisodeID), data); err != nil {
		return fmt.Errorf("store episode: %w", err)
	}
	return nil
}

// Get retrieves an episode by episode ID.
func (s *EpisodeStore) Get(ctx context.Context, episodeID string) (*EpisodeRecord, error) {
	data, err := s.bucket.Get(ctx, recordKey(episodeID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get episode: %w", err)
	}

	var rec EpisodeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal episode: %w", err)
	}
	return &rec, nil
}

// List returns every stored episode, oldest first. Entries that fail to
// load are skipped.
func (s *EpisodeStore) List(ctx context.Context) ([]*EpisodeRecord, error) {
	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list episode keys: %w", err)
	}

	recs := make([]*EpisodeRecord, 0, len(keys))
	for _, key := range keys {
		data, err := s.bucket.Get(ctx, key)
		if err != nil {
			continue
		}
		var rec EpisodeRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		recs = append(recs, &rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})
	return recs, nil
}

// Delete removes an episode.
func (s *EpisodeStore) Delete(ctx context.Context, episodeID string) error {
	if _, err := s.Get(ctx, episodeID); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, recordKey(episodeID)); err != nil {
		return fmt.Errorf("delete episode: %w", err)
	}
	return nil
}
