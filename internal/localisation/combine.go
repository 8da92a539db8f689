package localisation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// LocaleDir is the subdirectory that receives the combined per-language tables.
const LocaleDir = "locale"

// Language derives the language from a table name such as
// "citadel_mods_english": the segment after the last underscore.
func Language(name string) string {
	name = strings.TrimSuffix(name, ".json")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Combine groups named tables by language and merges each group. Tables are
// merged in name order; later tables override earlier values.
func Combine(named map[string]*Table) map[string]*Table {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	combined := make(map[string]*Table)
	for _, name := range names {
		lang := Language(name)
		if combined[lang] == nil {
			combined[lang] = NewTable()
		}
		combined[lang].Merge(named[name])
	}
	return combined
}

// LoadDir reads every *.json table directly inside dir, keyed by file name
// without extension. Unreadable files are logged and skipped.
func LoadDir(dir string) (map[string]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read localisation dir: %w", err)
	}

	tables := make(map[string]*Table)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to read localisation table")
			continue
		}
		table := NewTable()
		if err := json.Unmarshal(data, table); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Failed to decode localisation table")
			continue
		}
		tables[strings.TrimSuffix(e.Name(), ".json")] = table
	}
	return tables, nil
}

// WriteCombined writes each language table to dir/locale/<language>.json and
// returns the written paths.
func WriteCombined(dir string, combined map[string]*Table) ([]string, error) {
	outDir := filepath.Join(dir, LocaleDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create locale dir: %w", err)
	}

	langs := make([]string, 0, len(combined))
	for lang := range combined {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var written []string
	for _, lang := range langs {
		data, err := EncodeIndent(combined[lang])
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", lang, err)
		}
		path := filepath.Join(outDir, lang+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		log.Info().Str("language", lang).Int("keys", combined[lang].Len()).Str("path", path).Msg("Combined localisation written")
	}
	return written, nil
}

// EncodeIndent renders a table as two-space indented JSON.
func EncodeIndent(t *Table) ([]byte, error) {
	compact, err := t.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent table: %w", err)
	}
	return out.Bytes(), nil
}
