package cache

import (
	"context"
	"errors"
	"testing"

	"vdata-pipeline/internal/textutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	hashes  map[string]string
	lookups int
	err     error
}

func (f *fakeSource) Hash(_ context.Context, name string) (string, bool, error) {
	f.lookups++
	if f.err != nil {
		return "", false, f.err
	}
	h, ok := f.hashes[name]
	return h, ok, nil
}

func (f *fakeSource) Hashes(context.Context) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hashes, nil
}

func TestArtifactCache_Changed(t *testing.T) {
	content := []byte(`{"a": 1}`)
	src := &fakeSource{hashes: map[string]string{"scripts/a.json": textutil.Hash(content)}}
	c := NewArtifactCache(src)
	ctx := context.Background()

	changed, hash := c.Changed(ctx, "scripts/a.json", content)
	assert.False(t, changed)
	assert.Equal(t, textutil.Hash(content), hash)

	changed, _ = c.Changed(ctx, "scripts/a.json", []byte(`{"a": 2}`))
	assert.True(t, changed)
	assert.Equal(t, 1, src.lookups, "second lookup is served from memory")

	changed, _ = c.Changed(ctx, "scripts/new.json", content)
	assert.True(t, changed)
}

func TestArtifactCache_Mark(t *testing.T) {
	c := NewArtifactCache(&fakeSource{})
	content := []byte("x")

	changed, hash := c.Changed(context.Background(), "x.json", content)
	require.True(t, changed)

	c.Mark("x.json", hash)
	changed, _ = c.Changed(context.Background(), "x.json", content)
	assert.False(t, changed)
}

func TestArtifactCache_LookupError(t *testing.T) {
	c := NewArtifactCache(&fakeSource{err: errors.New("db down")})

	changed, _ := c.Changed(context.Background(), "x.json", []byte("x"))
	assert.True(t, changed)
	assert.Error(t, c.Preload(context.Background()))
}

func TestArtifactCache_Preload(t *testing.T) {
	src := &fakeSource{hashes: map[string]string{"a.json": textutil.Hash([]byte("a"))}}
	c := NewArtifactCache(src)
	require.NoError(t, c.Preload(context.Background()))

	changed, _ := c.Changed(context.Background(), "a.json", []byte("a"))
	assert.False(t, changed)
	assert.Zero(t, src.lookups)
}
