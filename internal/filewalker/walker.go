package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"vdata-pipeline/internal/parser"

	"github.com/rs/zerolog/log"
)

// ErrUnsupported is returned for files no parser handles.
var ErrUnsupported = errors.New("unsupported file")

// Walker traverses directories and dispatches files to the correct parser.
type Walker struct {
	parsers []parser.Parser
}

// NewWalker creates a Walker with the record and localisation parsers.
func NewWalker() *Walker {
	return NewWalkerWith(
		parser.NewVDataParser(),
		parser.NewLocalisationParser(),
	)
}

// NewWalkerWith creates a Walker over an explicit parser list, tried in order.
func NewWalkerWith(parsers ...parser.Parser) *Walker {
	return &Walker{parsers: parsers}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path   string
	Parser parser.Parser
}

// Walk discovers all supported files under the given root directory.
// Unreadable subdirectories are logged and skipped.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if p := w.parserFor(path); p != nil {
			entries = append(entries, FileEntry{Path: path, Parser: p})
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) parserFor(path string) parser.Parser {
	for _, p := range w.parsers {
		if p.CanParse(path) {
			return p
		}
	}
	return nil
}

// Entry resolves the parser for a single file.
func (w *Walker) Entry(path string) (FileEntry, error) {
	p := w.parserFor(path)
	if p == nil {
		return FileEntry{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return FileEntry{Path: path, Parser: p}, nil
}

// ParseFile parses a single file using the appropriate parser.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ParseResult, error) {
	return entry.Parser.Parse(entry.Path)
}
