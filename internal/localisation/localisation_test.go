package localisation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTokens = `"lang"
{
	"Language"		"english"
	"Tokens"
	{
		"hero_astro"		"Holliday"
		"upgrade_fleetfoot"	"Fleetfoot"
		//"upgrade_old"		"Old Name"
		// a plain comment
		"MaxHealth_label/MaxHealthBonus_label"	"Max Health"
		"upgrade_fleetfoot_desc"	"Gain <b>{g:citadel_binding:'Sprint'}</b> speed"
		"broken"	"too"	"many"
		"upgrade_fleetfoot"	"Fleet Foot"
	}
}`

func TestParse(t *testing.T) {
	table := Parse(strings.Split(sampleTokens, "\n"))

	assert.Equal(t, []string{
		"Language",
		"hero_astro",
		"upgrade_fleetfoot",
		"upgrade_old",
		"MaxHealth_label",
		"MaxHealthBonus_label",
		"upgrade_fleetfoot_desc",
	}, table.Keys())

	assert.Equal(t, "english", table.Lookup("Language"))
	assert.Equal(t, "Fleet Foot", table.Lookup("upgrade_fleetfoot"))
	assert.Equal(t, "Old Name", table.Lookup("upgrade_old"))
	assert.Equal(t, "Max Health", table.Lookup("MaxHealthBonus_label"))
	assert.Equal(t, "Gain <b>{g:citadel_binding:'Sprint'}</b> speed", table.Lookup("upgrade_fleetfoot_desc"))

	_, ok := table.Get("broken")
	assert.False(t, ok)
}

func TestParse_AliasKeepsExistingValue(t *testing.T) {
	table := Parse([]string{
		`"a"	"first"`,
		`"empty"	""`,
		`"a/b/empty"	"second"`,
	})
	assert.Equal(t, "first", table.Lookup("a"))
	assert.Equal(t, "second", table.Lookup("b"))
	assert.Equal(t, "second", table.Lookup("empty"))
}

func TestTable_JSONRoundTrip(t *testing.T) {
	table := NewTable()
	table.Set("z", "<i>last</i>")
	table.Set("a", "first")

	raw, err := table.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":"<i>last</i>","a":"first"}`, string(raw))

	back := NewTable()
	require.NoError(t, json.Unmarshal([]byte(`{"z":"<i>last</i>","a":"first","n":5}`), back))
	assert.Equal(t, []string{"z", "a"}, back.Keys())
	assert.Equal(t, "<i>last</i>", back.Lookup("z"))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "english", Language("citadel_mods_english"))
	assert.Equal(t, "schinese", Language("citadel_gc_schinese.json"))
	assert.Equal(t, "plain", Language("plain"))
}

func TestCombine(t *testing.T) {
	mods := NewTable()
	mods.Set("shared", "from mods")
	mods.Set("mod_only", "m")

	gc := NewTable()
	gc.Set("shared", "from gc")
	gc.Set("gc_only", "g")

	german := NewTable()
	german.Set("shared", "de")

	combined := Combine(map[string]*Table{
		"citadel_mods_english": mods,
		"citadel_gc_english":   gc,
		"citadel_gc_german":    german,
	})

	require.Len(t, combined, 2)
	english := combined["english"]
	// citadel_gc_english sorts first, so citadel_mods_english overrides it.
	assert.Equal(t, []string{"shared", "gc_only", "mod_only"}, english.Keys())
	assert.Equal(t, "from mods", english.Lookup("shared"))
	assert.Equal(t, "de", combined["german"].Lookup("shared"))
}

func TestLoadDirAndWriteCombined(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "citadel_mods_english.json"), []byte(`{"a":"1"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "citadel_gc_english.json"), []byte(`{"b":"2"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken_english.json"), []byte(`[`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0644))

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, tables, 2)

	written, err := WriteCombined(dir, Combine(tables))
	require.NoError(t, err)
	require.Len(t, written, 1)

	data, err := os.ReadFile(filepath.Join(dir, LocaleDir, "english.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": \"2\",\n  \"a\": \"1\"\n}", string(data))

	// The locale directory itself is not picked up on a second load.
	tables, err = LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
