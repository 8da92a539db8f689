// Package localisation reads the game's localization token tables and merges
// them per language.
package localisation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Table is an ordered string-to-string lookup.
type Table struct {
	keys   []string
	values map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set stores value at key. An existing key keeps its position.
func (t *Table) Set(key, value string) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
}

// Get returns the value for key.
func (t *Table) Get(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[key]
	return v, ok
}

// Lookup returns the value for key, or "" when absent.
func (t *Table) Lookup(key string) string {
	v, _ := t.Get(key)
	return v
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Merge copies every entry of other into t, overriding existing values.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		t.Set(k, other.values[k])
	}
}

// MarshalJSON writes the entries as an object in insertion order.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", k, err)
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(t.values[k]); err != nil {
			return nil, fmt.Errorf("encode value of %q: %w", k, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of strings, keeping key order. Non-string
// members are skipped.
func (t *Table) UnmarshalJSON(data []byte) error {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode table: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode table: expected object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode table: %w", err)
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode table value %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		t.Set(key, s)
	}
	return nil
}

var pairSeparator = regexp.MustCompile(`"\s+"`)

// Parse extracts `"key" "value"` pairs from the lines of a token file.
// A commented-out pair (`//"key" "value"`) still counts. Keys of the form
// `a/b` register each alias unless it already has a non-empty value.
func Parse(lines []string) *Table {
	table := NewTable()
	for _, line := range lines {
		trimmed := strings.Replace(strings.TrimSpace(line), `//"`, `"`, 1)
		if len(trimmed) < 2 || !strings.HasPrefix(trimmed, `"`) || !strings.HasSuffix(trimmed, `"`) {
			continue
		}

		parts := pairSeparator.Split(trimmed, -1)
		if len(parts) != 2 {
			continue
		}
		key, value := trimQuotes(parts[0]), trimQuotes(parts[1])

		if strings.Contains(key, "/") {
			for _, alias := range strings.Split(key, "/") {
				if table.Lookup(alias) != "" {
					continue
				}
				table.Set(alias, value)
			}
			continue
		}
		table.Set(key, value)
	}
	return table
}

func trimQuotes(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
}

// ParseReader scans r and parses its lines.
func ParseReader(r io.Reader) (*Table, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan localisation: %w", err)
	}
	return Parse(lines), nil
}
