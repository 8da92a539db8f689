package cache

import (
	"context"
	"fmt"
	"sync"

	"vdata-pipeline/internal/textutil"

	"github.com/rs/zerolog/log"
)

// HashSource looks up the hashes of previously published artifacts.
type HashSource interface {
	Hash(ctx context.Context, name string) (string, bool, error)
	Hashes(ctx context.Context) (map[string]string, error)
}

// ArtifactCache provides in-memory + store-backed lookup of published
// artifact hashes, so unchanged artifacts are not uploaded again.
type ArtifactCache struct {
	source HashSource
	mu     sync.RWMutex
	memory map[string]string // name → content hash
}

// NewArtifactCache creates a cache backed by source.
func NewArtifactCache(source HashSource) *ArtifactCache {
	return &ArtifactCache{
		source: source,
		memory: make(map[string]string),
	}
}

// Changed reports whether content differs from the last published version of
// name, and returns the content hash. A failed lookup counts as changed.
func (c *ArtifactCache) Changed(ctx context.Context, name string, content []byte) (bool, string) {
	hash := textutil.Hash(content)

	// Check in-memory cache first.
	c.mu.RLock()
	stored, ok := c.memory[name]
	c.mu.RUnlock()
	if ok {
		return stored != hash, hash
	}

	stored, ok, err := c.source.Hash(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("artifact", name).Msg("Hash lookup failed")
		return true, hash
	}
	if !ok {
		return true, hash
	}

	c.mu.Lock()
	c.memory[name] = stored
	c.mu.Unlock()

	return stored != hash, hash
}

// Mark records hash as the published version of name.
func (c *ArtifactCache) Mark(name, hash string) {
	c.mu.Lock()
	c.memory[name] = hash
	c.mu.Unlock()
}

// Preload loads all stored hashes into memory.
func (c *ArtifactCache) Preload(ctx context.Context) error {
	hashes, err := c.source.Hashes(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, hash := range hashes {
		c.memory[name] = hash
	}

	log.Info().Int("count", len(hashes)).Msg("Preloaded artifact hashes")
	return nil
}
