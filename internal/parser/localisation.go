package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vdata-pipeline/internal/localisation"
)

// LocalisationParser parses localization token tables: .txt files somewhere
// below a path containing "localization".
type LocalisationParser struct{}

func NewLocalisationParser() *LocalisationParser { return &LocalisationParser{} }

func (p *LocalisationParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".txt" &&
		strings.Contains(filepath.ToSlash(path), "localization")
}

func (p *LocalisationParser) Parse(filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open localisation file: %w", err)
	}
	defer file.Close()

	table, err := localisation.ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("parse localisation file: %w", err)
	}

	return &ParseResult{
		FilePath: filePath,
		Name:     baseName(filePath),
		Group:    GroupLocalisation,
		Table:    table,
	}, nil
}
