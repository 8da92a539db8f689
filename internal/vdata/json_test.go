package vdata

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Indented(t *testing.T) {
	root := NewBlock()
	root.Set("name", String("<b>Astro</b>"))
	child := NewBlock()
	child.Set("speed", Number(6.8))
	root.Set("stats", child)
	root.Set("tags", NewSequence(String("a"), Bool(true)))
	root.Set("empty", NewBlock())

	data, err := Marshal(root, "  ")
	require.NoError(t, err)

	want := `{
  "name": "<b>Astro</b>",
  "stats": {
    "speed": 6.8
  },
  "tags": [
    "a",
    true
  ],
  "empty": {}
}`
	assert.Equal(t, want, string(data))
}

func TestMarshal_NegativeZero(t *testing.T) {
	data, err := Marshal(NewSequence(Number(math.Copysign(0, -1))), "")
	require.NoError(t, err)
	assert.Equal(t, `[0]`, string(data))
}

func TestBlock_MarshalJSONInsideStruct(t *testing.T) {
	blk := NewBlock()
	blk.Set("z", Number(1))
	blk.Set("a", Number(2))

	data, err := json.Marshal(struct {
		Upgrades *Block `json:"upgrades"`
	}{Upgrades: blk})
	require.NoError(t, err)
	assert.Equal(t, `{"upgrades":{"z":1,"a":2}}`, string(data))
}

func TestDecode_PreservesOrder(t *testing.T) {
	src := `{"z":1,"a":{"y":"s","b":[1,2,{"k":false}]},"n":null}`
	v, err := Decode([]byte(src))
	require.NoError(t, err)

	blk := AsBlock(v)
	require.NotNil(t, blk)
	assert.Equal(t, []string{"z", "a"}, blk.Keys())

	data, err := Marshal(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":"s","b":[1,2,{"k":false}]}}`, string(data))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`null`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"a":1}{`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestBlock_Accessors(t *testing.T) {
	root := AsBlock(Parse([]string{
		"hero =", "{", "m_HeroID = 7", "m_strName = \"Astro\"", "m_bFlag = true",
		"stats =", "{", "EMaxHealth = 550", "}", "}",
	}))
	require.NotNil(t, root)

	hero := root.Block("hero")
	require.NotNil(t, hero)

	id, ok := hero.Number("m_HeroID")
	assert.True(t, ok)
	assert.Equal(t, 7.0, id)

	name, ok := hero.String("m_strName")
	assert.True(t, ok)
	assert.Equal(t, "Astro", name)

	idText, _ := hero.String("m_HeroID")
	assert.Equal(t, "7", idText)

	flag, _ := hero.Get("m_bFlag")
	b, ok := AsBool(flag)
	assert.True(t, ok)
	assert.True(t, b)

	hp, ok := root.Lookup("hero", "stats", "EMaxHealth")
	require.True(t, ok)
	n, _ := AsNumber(hp)
	assert.Equal(t, 550.0, n)

	_, ok = root.Lookup("hero", "missing", "x")
	assert.False(t, ok)
	assert.Nil(t, root.Block("nope"))
	assert.Equal(t, 0, root.Sequence("hero").Len())
}
