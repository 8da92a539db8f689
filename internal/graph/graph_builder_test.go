package graph

import (
	"testing"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/vdata"

	"github.com/stretchr/testify/assert"
)

func TestEdges(t *testing.T) {
	heroes := collate.NewCollection[*collate.Hero]()
	heroes.Add("astro", &collate.Hero{
		Name: "Holliday",
		Abilities: []vdata.Value{
			vdata.String("ability_one"), nil, vdata.String("ability_one"), vdata.String("ability_three"),
			vdata.String("#citadel_ability_one"),
		},
	})

	items := collate.NewCollection[*collate.Item]()
	items.Add("upgrade_big", &collate.Item{
		Name:       "Big",
		Components: vdata.NewSequence(vdata.String("upgrade_small"), vdata.String("upgrade_missing")),
	})
	items.Add("upgrade_small", &collate.Item{Name: "Small"})

	g := Edges(heroes, items)

	assert.Equal(t, []Node{
		{Label: LabelHero, Key: "astro", Name: "Holliday"},
		{Label: LabelAbility, Key: "ability_one"},
		{Label: LabelAbility, Key: "ability_three"},
		{Label: LabelItem, Key: "upgrade_big", Name: "Big"},
		{Label: LabelItem, Key: "upgrade_small", Name: "Small"},
		{Label: LabelItem, Key: "upgrade_missing"},
	}, g.Nodes)

	var got []string
	for _, r := range g.Relationships {
		got = append(got, r.From.Key+" "+r.Type+" "+r.To.Key)
	}
	assert.Equal(t, []string{
		"astro HAS_ABILITY ability_one",
		"astro HAS_ABILITY ability_three",
		"upgrade_big BUILDS_FROM upgrade_small",
		"upgrade_big BUILDS_FROM upgrade_missing",
	}, got)
}

func TestEdges_Empty(t *testing.T) {
	g := Edges(nil, nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Relationships)
}

func TestParseLabel(t *testing.T) {
	label, ok := ParseLabel("hero")
	assert.True(t, ok)
	assert.Equal(t, LabelHero, label)

	label, ok = ParseLabel("ITEM")
	assert.True(t, ok)
	assert.Equal(t, LabelItem, label)

	_, ok = ParseLabel("n) DETACH DELETE n //")
	assert.False(t, ok)
}
