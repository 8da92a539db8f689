package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vdata-pipeline/internal/cache"
	"vdata-pipeline/internal/store"
	"vdata-pipeline/internal/textutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ArtifactStore that also serves as the cache's
// hash source.
type memStore struct {
	artifacts map[string]store.Artifact
	fail      map[string]bool
	upserts   int
}

func newMemStore() *memStore {
	return &memStore{artifacts: make(map[string]store.Artifact), fail: make(map[string]bool)}
}

func (m *memStore) Upsert(_ context.Context, a store.Artifact) (bool, error) {
	m.upserts++
	if m.fail[a.Name] {
		return false, errors.New("boom")
	}
	if old, ok := m.artifacts[a.Name]; ok && old.Hash == a.Hash {
		return false, nil
	}
	m.artifacts[a.Name] = a
	return true, nil
}

func (m *memStore) Hash(_ context.Context, name string) (string, bool, error) {
	a, ok := m.artifacts[name]
	return a.Hash, ok, nil
}

func (m *memStore) Hashes(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.artifacts))
	for name, a := range m.artifacts {
		out[name] = a.Hash
	}
	return out, nil
}

func writeOutput(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestArtifactNames(t *testing.T) {
	dir := t.TempDir()
	writeOutput(t, dir, map[string]string{
		"version_info.json":                    `{}`,
		"all_item_data.json":                   `{}`,
		"scripts/heroes.json":                  `{}`,
		"localisation/citadel_gc_english.json": `{}`,
		"localisation/locale/english.json":     `{}`,
		"exports/items.json":                   `{}`,
		"exports/items.xlsx":                   "xlsx",
		"notes.txt":                            "ignored",
	})

	names, err := ArtifactNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"all_item_data.json",
		"localisation/citadel_gc_english.json",
		"localisation/locale/english.json",
		"scripts/heroes.json",
		"version_info.json",
	}, names)
}

func TestKindOf(t *testing.T) {
	cases := map[string]string{
		"version_info.json":                    KindVersion,
		"consolidated_hero_data.json":          KindCollated,
		"scripts/heroes.json":                  KindScripts,
		"localisation/citadel_gc_english.json": KindLocalisation,
		"localisation/locale/english.json":     KindLocale,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, KindOf(name))
		})
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeOutput(t, dir, map[string]string{
		"scripts/heroes.json":    `{"hero_astro":{}}`,
		"scripts/abilities.json": `{}`,
		"all_item_data.json":     `{"upgrade":{}}`,
	})

	st := newMemStore()
	st.artifacts["scripts/abilities.json"] = store.Artifact{Name: "scripts/abilities.json", Hash: textutil.Hash([]byte(`{}`))}
	c := cache.NewArtifactCache(st)
	require.NoError(t, c.Preload(ctx))

	stats, err := Publish(ctx, dir, st, c, "5920")
	require.NoError(t, err)
	assert.Equal(t, &PublishStats{Uploaded: 2, Unchanged: 1}, stats)
	assert.Equal(t, 2, st.upserts)

	heroes := st.artifacts["scripts/heroes.json"]
	assert.Equal(t, KindScripts, heroes.Kind)
	assert.Equal(t, "5920", heroes.ClientVersion)
	assert.Equal(t, textutil.Hash([]byte(`{"hero_astro":{}}`)), heroes.Hash)
	assert.Equal(t, KindCollated, st.artifacts["all_item_data.json"].Kind)

	// A second run uploads nothing.
	stats, err = Publish(ctx, dir, st, c, "5920")
	require.NoError(t, err)
	assert.Equal(t, &PublishStats{Unchanged: 3}, stats)
	assert.Equal(t, 2, st.upserts)
}

func TestPublish_FailedUpsert(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeOutput(t, dir, map[string]string{
		"scripts/a.json": `{"a":1}`,
		"scripts/b.json": `{"b":1}`,
	})

	st := newMemStore()
	st.fail["scripts/a.json"] = true
	c := cache.NewArtifactCache(st)

	stats, err := Publish(ctx, dir, st, c, "")
	require.NoError(t, err)
	assert.Equal(t, &PublishStats{Uploaded: 1, Failed: 1}, stats)

	// The failed artifact is retried on the next run.
	delete(st.fail, "scripts/a.json")
	stats, err = Publish(ctx, dir, st, c, "")
	require.NoError(t, err)
	assert.Equal(t, &PublishStats{Uploaded: 1, Unchanged: 1}, stats)
}

func TestPublish_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	writeOutput(t, dir, map[string]string{"scripts/a.json": `{}`})

	st := newMemStore()
	_, err := Publish(ctx, dir, st, cache.NewArtifactCache(st), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.upserts)
}

func TestClientVersion(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, ClientVersion(dir))

	writeOutput(t, dir, map[string]string{"version_info.json": `{"clientVersion":"5920","versionDate":"Feb 11 2025"}`})
	assert.Equal(t, "5920", ClientVersion(dir))
}

func TestListArtifacts_UnknownKind(t *testing.T) {
	_, err := ListArtifacts(context.Background(), "postgres://unused", "embeddings")
	assert.ErrorContains(t, err, "unknown artifact kind")
}
