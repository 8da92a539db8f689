// Package collate turns parsed scripts and localisation tables into the
// consolidated hero, item and ability documents.
package collate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/parser"
	"vdata-pipeline/internal/vdata"

	"github.com/rs/zerolog/log"
)

// Script and table names the collators read.
const (
	ScriptHeroes      = "heroes"
	ScriptAbilities   = "abilities"
	ScriptGenericData = "generic_data"

	TableHeroes = "citadel_heroes_english"
	TableMods   = "citadel_mods_english"
	TableGC     = "citadel_gc_english"
)

// ErrMissingInputs is returned when a collation stage lacks a required input.
var ErrMissingInputs = errors.New("required inputs are missing")

// Sources holds parsed scripts and localisation tables by file name.
type Sources struct {
	Scripts      map[string]vdata.Value
	Localisation map[string]*localisation.Table
}

func NewSources() *Sources {
	return &Sources{
		Scripts:      make(map[string]vdata.Value),
		Localisation: make(map[string]*localisation.Table),
	}
}

// Add records a parse result under its name.
func (s *Sources) Add(r *parser.ParseResult) {
	switch r.Group {
	case parser.GroupScripts:
		s.Scripts[r.Name] = r.Tree
	case parser.GroupLocalisation:
		s.Localisation[r.Name] = r.Table
	}
}

// Script returns the root block of a parsed script, or nil.
func (s *Sources) Script(name string) *vdata.Block {
	return vdata.AsBlock(s.Scripts[name])
}

// Table returns a localisation table, or nil. A nil table answers every
// lookup with "".
func (s *Sources) Table(name string) *localisation.Table {
	return s.Localisation[name]
}

// require checks that the named scripts and tables are present. When some
// are missing it logs which inputs exist and returns ErrMissingInputs.
func (s *Sources) require(stage string, scripts, tables []string) error {
	var missing []string
	ev := log.Error().Str("stage", stage)
	for _, name := range scripts {
		ok := s.Script(name) != nil
		ev = ev.Bool(name, ok)
		if !ok {
			missing = append(missing, name)
		}
	}
	for _, name := range tables {
		ok := s.Table(name) != nil
		ev = ev.Bool(name, ok)
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		ev.Discard()
		return nil
	}
	ev.Msg("Required files are missing")
	return fmt.Errorf("%s: %w: %s", stage, ErrMissingInputs, strings.Join(missing, ", "))
}

// LoadSources reads previously written artifacts from outputDir:
// scripts/*.json and localisation/*.json.
func LoadSources(outputDir string) (*Sources, error) {
	src := NewSources()

	scriptsDir := filepath.Join(outputDir, parser.GroupScripts)
	entries, err := os.ReadDir(scriptsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(scriptsDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to read script")
			continue
		}
		tree, err := vdata.Decode(data)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to decode script")
			continue
		}
		src.Scripts[strings.TrimSuffix(e.Name(), ".json")] = tree
	}

	tables, err := localisation.LoadDir(filepath.Join(outputDir, parser.GroupLocalisation))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for name, t := range tables {
		src.Localisation[name] = t
	}

	log.Info().
		Int("scripts", len(src.Scripts)).
		Int("tables", len(src.Localisation)).
		Str("dir", outputDir).
		Msg("Loaded collation sources")
	return src, nil
}
