package main

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semlog/config"
	"github.com/c360studio/semlog/storage"
)

type memBucket struct{ data map[string][]byte }

func newMemBucket() *memBucket { return &memBucket{data: make(map[string][]byte)} }

func (m *memBucket) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *memBucket) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBucket) Keys(context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memBucket) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestEpisodesListShowRemove(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	a.store = storage.NewEpisodeStore(newMemBucket())

	_, err := a.replay(ctx, strings.NewReader(kitchenTrace), "kitchen")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, a.listEpisodes(ctx, &out, 10))
	assert.Contains(t, out.String(), "EPISODE")
	assert.Contains(t, out.String(), "timeline episodes: 1")
	assert.Equal(t, 2, strings.Count(out.String(), "kitchen"))

	out.Reset()
	require.NoError(t, a.showEpisode(ctx, &out, "kitchen", true))
	assert.Contains(t, out.String(), "episode kitchen (rdfxml): 3 events")
	assert.Contains(t, out.String(), "<rdf:RDF")
	assert.Contains(t, out.String(), "total Contact:")
	assert.Contains(t, out.String(), "total FurnitureState:")

	require.NoError(t, a.removeEpisode(ctx, "kitchen"))
	_, err = a.store.Get(ctx, "kitchen")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, a.removeEpisode(ctx, "kitchen"), storage.ErrNotFound)

	// the timeline database still has the rows
	out.Reset()
	require.NoError(t, a.showEpisode(ctx, &out, "kitchen", false))
	assert.NotContains(t, out.String(), "<rdf:RDF")
	assert.Contains(t, out.String(), "EVENT")
}

func TestEpisodesShowUnknown(t *testing.T) {
	a := testApp(t)
	err := a.showEpisode(context.Background(), &bytes.Buffer{}, "nope", false)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEpisodesWithoutStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	a, err := newApp(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer a.close(context.Background())

	ctx := context.Background()
	assert.ErrorIs(t, a.listEpisodes(ctx, &bytes.Buffer{}, 0), errNoEpisodeStore)
	assert.ErrorIs(t, a.showEpisode(ctx, &bytes.Buffer{}, "x", false), errNoEpisodeStore)
	assert.Error(t, a.removeEpisode(ctx, "x"))
}
