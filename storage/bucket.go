package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// BucketEpisodes holds one record per finalized episode.
const BucketEpisodes = "SEMLOG_EPISODES"

// Bucket is the subset of a key-value bucket the store needs.
type Bucket interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// kvBucket adapts a JetStream KeyValue to Bucket.
type kvBucket struct {
	kv jetstream.KeyValue
}

// NewKVBucket wraps a JetStream key-value bucket.
func NewKVBucket(kv jetstream.KeyValue) Bucket {
	return &kvBucket{kv: kv}
}

func (b *kvBucket) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := b.kv.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value(), nil
}

func (b *kvBucket) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.kv.Put(ctx, key, value)
	return err
}

func (b *kvBucket) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	return keys, err
}

func (b *kvBucket) Delete(ctx context.Context, key string) error {
	return b.kv.Delete(ctx, key)
}

// OpenBucket returns the named bucket, creating it when missing.
func OpenBucket(ctx context.Context, js jetstream.JetStream, name string) (Bucket, error) {
	kv, err := getOrCreateBucket(ctx, js, name)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}
	return NewKVBucket(kv), nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semlog %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "key not found")
}
