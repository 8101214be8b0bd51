package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream carrying graph ingestion.
const StreamName = "GRAPH"

// EnsureStream returns the graph stream, creating it when missing.
func EnsureStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	stream, err := js.Stream(ctx, StreamName)
	if err == nil {
		return stream, nil
	}
	stream, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{GraphIngestSubject},
		MaxAge:   24 * time.Hour,
		Storage:  jetstream.MemoryStorage,
		Replicas: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return stream, nil
}
