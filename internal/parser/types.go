package parser

import (
	"vdata-pipeline/internal/localisation"
	"vdata-pipeline/internal/vdata"
)

// Output groups, also the subdirectories artifacts are written to.
const (
	GroupScripts      = "scripts"
	GroupLocalisation = "localisation"
)

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the absolute path to the parsed file.
	FilePath string
	// Name is the file name without extension; artifacts are indexed by it.
	Name string
	// Group is the output group (scripts, localisation).
	Group string
	// Tree is set for .vdata files.
	Tree vdata.Value
	// Table is set for localisation files.
	Table *localisation.Table
}

// Encode renders the parsed content as two-space indented JSON.
func (r *ParseResult) Encode() ([]byte, error) {
	if r.Table != nil {
		return localisation.EncodeIndent(r.Table)
	}
	return vdata.Marshal(r.Tree, "  ")
}

// Parser is the interface for all source file parsers.
type Parser interface {
	// CanParse returns true if this parser handles the file at path.
	CanParse(path string) bool
	// Parse reads and parses a file.
	Parse(filePath string) (*ParseResult, error)
}
