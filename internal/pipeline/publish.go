package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vdata-pipeline/internal/cache"
	"vdata-pipeline/internal/export"
	"vdata-pipeline/internal/gameinfo"
	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/parser"
	"vdata-pipeline/internal/store"

	"github.com/rs/zerolog/log"
)

// Artifact kinds stored alongside published documents.
const (
	KindScripts      = parser.GroupScripts
	KindLocalisation = parser.GroupLocalisation
	KindLocale       = localisation.LocaleDir
	KindCollated     = "collated"
	KindVersion      = "version"
)

// ArtifactStore persists published artifacts.
type ArtifactStore interface {
	Upsert(ctx context.Context, a store.Artifact) (bool, error)
}

// PublishStats counts the outcome of a publish run.
type PublishStats struct {
	Uploaded  int
	Unchanged int
	Failed    int
}

// PublishDir migrates the database at dsn and publishes every artifact under
// outDir to it.
func PublishDir(ctx context.Context, dsn, outDir, clientVersion string) (*PublishStats, error) {
	if err := store.Migrate(ctx, dsn); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	c := cache.NewArtifactCache(st)
	if err := c.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload artifact hashes")
	}

	return Publish(ctx, outDir, st, c, clientVersion)
}

// Publish uploads the JSON artifacts under outDir whose content changed since
// they were last published. Files that cannot be read or stored are logged
// and counted as failed.
func Publish(ctx context.Context, outDir string, st ArtifactStore, c *cache.ArtifactCache, clientVersion string) (*PublishStats, error) {
	names, err := ArtifactNames(outDir)
	if err != nil {
		return nil, err
	}

	stats := &PublishStats{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		content, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		if err != nil {
			log.Error().Err(err).Str("artifact", name).Msg("Failed to read artifact")
			stats.Failed++
			continue
		}

		changed, hash := c.Changed(ctx, name, content)
		if !changed {
			stats.Unchanged++
			continue
		}

		updated, err := st.Upsert(ctx, store.Artifact{
			Name:          name,
			Kind:          KindOf(name),
			Content:       content,
			Hash:          hash,
			ClientVersion: clientVersion,
		})
		if err != nil {
			log.Error().Err(err).Str("artifact", name).Msg("Failed to publish artifact")
			stats.Failed++
			continue
		}
		c.Mark(name, hash)

		if updated {
			stats.Uploaded++
			log.Debug().Str("artifact", name).Msg("Artifact published")
		} else {
			stats.Unchanged++
		}
	}

	log.Info().
		Int("uploaded", stats.Uploaded).
		Int("unchanged", stats.Unchanged).
		Int("failed", stats.Failed).
		Msg("Publish complete")
	return stats, nil
}

// ArtifactNames lists the JSON artifacts under outDir as slash-separated
// relative paths in lexical order. Spreadsheet exports are skipped.
func ArtifactNames(outDir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == export.Dir && path != outDir {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return names, nil
}

// KindOf classifies an artifact by its relative path.
func KindOf(name string) string {
	parts := strings.Split(name, "/")
	switch {
	case len(parts) == 1 && name == gameinfo.VersionInfoFile:
		return KindVersion
	case len(parts) == 1:
		return KindCollated
	case parts[0] == parser.GroupLocalisation && parts[1] == localisation.LocaleDir:
		return KindLocale
	default:
		return parts[0]
	}
}

// ClientVersion returns the client version recorded in outDir, or "" when no
// version info was written.
func ClientVersion(outDir string) string {
	info, err := gameinfo.ReadVersionInfo(outDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msg("Could not read version info")
		}
		return ""
	}
	return info.ClientVersion
}
