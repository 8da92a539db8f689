package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vdata-pipeline/internal/vdata"
)

// VDataParser parses .vdata record files.
type VDataParser struct{}

func NewVDataParser() *VDataParser { return &VDataParser{} }

func (p *VDataParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".vdata"
}

func (p *VDataParser) Parse(filePath string) (*ParseResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open vdata file: %w", err)
	}
	defer file.Close()

	tree, err := vdata.ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("parse vdata file: %w", err)
	}

	return &ParseResult{
		FilePath: filePath,
		Name:     baseName(filePath),
		Group:    GroupScripts,
		Tree:     tree,
	}, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
