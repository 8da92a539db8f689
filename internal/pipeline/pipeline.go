// Package pipeline runs a full build over an extracted game data directory:
// parse every record and localisation file, collate heroes, items and
// abilities, combine localisations, then the optional export, publish and
// graph stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/config"
	"vdata-pipeline/internal/export"
	"vdata-pipeline/internal/filewalker"
	"vdata-pipeline/internal/gameinfo"
	"vdata-pipeline/internal/interpolation"
	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/parser"
	"vdata-pipeline/internal/worker"

	"github.com/rs/zerolog/log"
)

// ErrDataDir is returned when the data directory does not exist.
var ErrDataDir = errors.New("data directory not found")

// Summary describes the outcome of a build.
type Summary struct {
	// Parsed is the number of source files parsed and written.
	Parsed int
	// Failed lists the source files that could not be parsed or written.
	Failed []string
	// Written lists every artifact written, in stage order.
	Written []string
	// Published is the number of artifacts uploaded to the database.
	Published int
	Version   *gameinfo.VersionInfo
	Collated  *collate.Result
}

type parsed struct {
	result *parser.ParseResult
	data   []byte
}

// Build runs the pipeline described by cfg. Per-file failures are recorded in
// the summary; an error is returned only when the data or output directory is
// unusable or a configured database or graph cannot be reached.
func Build(ctx context.Context, cfg *config.Config) (*Summary, error) {
	if info, err := os.Stat(cfg.DataPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDataDir, cfg.DataPath)
	}

	outDir := cfg.OutputDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	sum := &Summary{}
	sum.Version = gameinfo.Load(cfg.DataPath, outDir)
	if sum.Version != nil {
		sum.Written = append(sum.Written, filepath.Join(outDir, gameinfo.VersionInfoFile))
	}

	entries, err := filewalker.NewWalker().Walk(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("walk data directory: %w", err)
	}

	log.Info().Int("files", len(entries)).Int("workers", cfg.WorkerCount).Msg("Parsing files")

	pool := worker.NewPool[filewalker.FileEntry, *parsed](cfg.WorkerCount, func(ctx context.Context, entry filewalker.FileEntry) (*parsed, error) {
		result, err := entry.Parser.Parse(entry.Path)
		if err != nil {
			return nil, err
		}
		data, err := result.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", entry.Path, err)
		}
		return &parsed{result: result, data: data}, nil
	})

	tasks := pool.Execute(ctx, entries)
	for _, task := range worker.Failed(tasks) {
		log.Error().Err(task.Err).Str("file", task.Input.Path).Msg("Parse failed")
		sum.Failed = append(sum.Failed, task.Input.Path)
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	// Written in input order: files sharing an output name resolve to the
	// last one, the same file the collation inputs keep.
	src := collate.NewSources()
	targets := make(map[string]string)
	for _, task := range tasks {
		if task.Err != nil {
			continue
		}
		r := task.Result.result
		path := outputPath(outDir, r)
		prev, seen := targets[path]
		if seen {
			log.Warn().
				Str("file", task.Input.Path).
				Str("previous", prev).
				Str("output", path).
				Msg("Output name collision, later file wins")
		}
		if err := writeArtifact(path, task.Result.data); err != nil {
			log.Error().Err(err).Str("file", task.Input.Path).Msg("Write failed")
			sum.Failed = append(sum.Failed, task.Input.Path)
			continue
		}
		if !seen {
			sum.Written = append(sum.Written, path)
		}
		targets[path] = task.Input.Path
		sum.Parsed++
		src.Add(r)
	}

	res, err := collate.Run(src, outDir, interpolation.MergeKeybinds(cfg.Keybinds))
	if err != nil {
		log.Error().Err(err).Msg("Collation finished with errors")
	}
	sum.Collated = res
	sum.Written = append(sum.Written, res.Written...)

	combined, err := localisation.WriteCombined(
		filepath.Join(outDir, parser.GroupLocalisation),
		localisation.Combine(src.Localisation),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to write combined localisation")
	}
	sum.Written = append(sum.Written, combined...)

	if cfg.ExportXLSX {
		sum.Written = append(sum.Written, Export(outDir, res)...)
	}

	if cfg.PublishEnabled() {
		clientVersion := ""
		if sum.Version != nil {
			clientVersion = sum.Version.ClientVersion
		}
		stats, err := PublishDir(ctx, cfg.DatabaseURL, outDir, clientVersion)
		if err != nil {
			return sum, err
		}
		sum.Published = stats.Uploaded
	}

	if cfg.GraphEnabled() {
		if err := LoadGraph(ctx, cfg, res); err != nil {
			return sum, err
		}
	}

	log.Info().
		Int("parsed", sum.Parsed).
		Int("failed", len(sum.Failed)).
		Int("written", len(sum.Written)).
		Int("published", sum.Published).
		Msg("Build complete")
	for _, f := range sum.Failed {
		log.Warn().Str("file", f).Msg("Failed file")
	}

	return sum, nil
}

// outputPath returns <outDir>/<group>/<name>.json for r.
func outputPath(outDir string, r *parser.ParseResult) string {
	return filepath.Join(outDir, r.Group, r.Name+".json")
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("output", path).Msg("Parsed file written")
	return nil
}

// Combine merges the localisation tables written under outDir into one table
// per language.
func Combine(outDir string) ([]string, error) {
	dir := filepath.Join(outDir, parser.GroupLocalisation)
	tables, err := localisation.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	return localisation.WriteCombined(dir, localisation.Combine(tables))
}

// Export writes the spreadsheet exports for the collated documents present in
// res. Failures are logged.
func Export(outDir string, res *collate.Result) []string {
	dir := filepath.Join(outDir, export.Dir)
	var written []string

	if res.Items != nil {
		path := filepath.Join(dir, export.ItemsFile)
		if err := export.Items(path, res.Items); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Item export failed")
		} else {
			written = append(written, path)
		}
	}
	if res.Heroes != nil {
		path := filepath.Join(dir, export.HeroesFile)
		if err := export.Heroes(path, res.Heroes); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Hero export failed")
		} else {
			written = append(written, path)
		}
	}
	return written
}
