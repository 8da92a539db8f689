package collate

import (
	"errors"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Result holds the collated documents. A collection is nil when its stage was
// skipped for missing inputs.
type Result struct {
	Heroes    *Collection[*Hero]
	Items     *Collection[*Item]
	Abilities *Collection[*Ability]
	// Written lists the files written, in stage order.
	Written []string
}

// Collate runs every stage in memory without writing anything.
func Collate(src *Sources, keybinds map[string]string) *Result {
	res := &Result{}
	var err error
	if res.Heroes, err = Heroes(src); err != nil {
		log.Error().Err(err).Msg("Skipping hero collation")
	}
	if res.Items, err = Items(src, keybinds); err != nil {
		log.Error().Err(err).Msg("Skipping item collation")
	}
	if res.Abilities, err = Abilities(src); err != nil {
		log.Error().Err(err).Msg("Skipping ability collation")
	}
	return res
}

// Run collates src and writes each document into outputDir. Only write
// failures are returned; the remaining documents are still written.
func Run(src *Sources, outputDir string, keybinds map[string]string) (*Result, error) {
	res := Collate(src, keybinds)

	docs := []struct {
		file string
		doc  any
		ok   bool
	}{
		{HeroesFile, res.Heroes, res.Heroes != nil},
		{ItemsFile, res.Items, res.Items != nil},
		{AbilitiesFile, res.Abilities, res.Abilities != nil},
	}

	var errs []error
	for _, d := range docs {
		if !d.ok {
			continue
		}
		path := filepath.Join(outputDir, d.file)
		if err := WriteJSON(path, d.doc); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to write collated data")
			errs = append(errs, err)
			continue
		}
		res.Written = append(res.Written, path)
		log.Info().Str("file", path).Msg("Collated data written")
	}
	return res, errors.Join(errs...)
}
