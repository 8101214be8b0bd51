// Package graph publishes episode individuals to the knowledge graph ingest
// stream.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/owl"
	"github.com/c360studio/semlog/vocabulary/knowrob"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// DefaultSource is the triple source of published individuals.
const DefaultSource = "semlog.episode"

// EntityIngestMessage is the message format for graph ingestion.
// Matches the format used by other semstreams components.
type EntityIngestMessage struct {
	ID        string           `json:"id"`
	Triples   []message.Triple `json:"triples"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Publisher publishes to a JetStream subject. *natsclient.Client
// satisfies it.
type Publisher interface {
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// Entity categories.
const (
	CategoryEvent     = "event"
	CategoryObject    = "object"
	CategoryTimepoint = "timepoint"
	CategoryEpisode   = "episode"
)

// EntityID generates a consistent entity ID for an individual.
// Format: semlog.local.episode.<episode>.<category>.<name>
func EntityID(episodeID, category, local string) string {
	return fmt.Sprintf("semlog.local.episode.%s.%s.%s", sanitize(episodeID), category, sanitize(local))
}

func sanitize(s string) string {
	return strings.NewReplacer(".", "_", " ", "_", ":", "_").Replace(s)
}

// EpisodePublisher publishes the individuals of one episode document.
type EpisodePublisher struct {
	client    Publisher
	episodeID string
	doc       *owl.Document
	source    string
	logger    *slog.Logger
	now       func() time.Time
}

// NewEpisodePublisher creates a publisher for doc.
func NewEpisodePublisher(client Publisher, episodeID string, doc *owl.Document, logger *slog.Logger) *EpisodePublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EpisodePublisher{
		client:    client,
		episodeID: episodeID,
		doc:       doc,
		source:    DefaultSource,
		logger:    logger,
		now:       time.Now,
	}
}

// category classifies an individual of the document.
func (p *EpisodePublisher) category(name owl.PrefixedName) string {
	switch {
	case p.doc.HasObject(name):
		return CategoryObject
	case strings.HasPrefix(name.Local, "timepoint_"):
		return CategoryTimepoint
	case p.doc.Metadata() != nil && p.doc.Metadata().Identity() == name:
		return CategoryEpisode
	default:
		return CategoryEvent
	}
}

// Payload converts an individual into a graph payload. Predicates use the
// registered vocabulary keys; references to episode individuals use entity
// IDs and everything else resolves to an absolute IRI.
func (p *EpisodePublisher) Payload(ind *owl.NamedIndividual) *IndividualPayload {
	cfg := p.doc.Config()
	now := p.now()
	id := EntityID(p.episodeID, p.category(ind.Identity()), ind.Identity().Local)

	facts := ind.Facts()
	triples := make([]message.Triple, 0, len(facts))
	for _, f := range facts {
		t := message.Triple{
			Subject:    id,
			Predicate:  knowrob.PredicateKey(f.Predicate()),
			Source:     p.source,
			Timestamp:  now,
			Confidence: 1.0,
		}
		if lit, ok := f.Literal(); ok {
			t.Object = lit.Native()
		} else {
			r, _ := f.Resource()
			if r.Prefix == cfg.IndividualPrefix {
				t.Object = EntityID(p.episodeID, p.category(r), r.Local)
			} else {
				t.Object = cfg.Entities.Resolve(r)
			}
		}
		triples = append(triples, t)
	}

	return &IndividualPayload{EntityID_: id, TripleData: triples, UpdatedAt: now}
}

// PublishIndividual publishes one individual.
func (p *EpisodePublisher) PublishIndividual(ctx context.Context, ind *owl.NamedIndividual) error {
	if p.client == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}

	payload := p.Payload(ind)
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid individual %s: %w", ind.Identity(), err)
	}

	msg := EntityIngestMessage{
		ID:        payload.EntityID(),
		Triples:   payload.Triples(),
		UpdatedAt: payload.UpdatedAt,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal individual: %w", err)
	}

	if err := p.client.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish individual %s: %w", ind.Identity(), err)
	}
	return nil
}

// PublishEvent publishes a closed event as soon as it closes.
func (p *EpisodePublisher) PublishEvent(ctx context.Context, ce events.ClosedEvent) error {
	return p.PublishIndividual(ctx, ce.Individual)
}

// Listener returns a registry listener publishing every closed event.
// Publish failures are logged; they never stop the episode.
func (p *EpisodePublisher) Listener(ctx context.Context) events.Listener {
	return func(ce events.ClosedEvent) {
		if err := p.PublishEvent(ctx, ce); err != nil {
			p.logger.Warn("Failed to publish event", "key", ce.Key, "error", err)
		}
	}
}

// PublishDocument publishes every individual of the document in rendering
// order and returns the number published.
func (p *EpisodePublisher) PublishDocument(ctx context.Context) (int, error) {
	n := 0
	for _, ind := range p.doc.Individuals() {
		if len(ind.Facts()) == 0 {
			continue
		}
		if err := p.PublishIndividual(ctx, ind); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
