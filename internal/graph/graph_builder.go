package graph

import (
	"context"
	"fmt"
	"strings"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/vdata"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Node labels and relationship types.
const (
	LabelHero    = "Hero"
	LabelAbility = "Ability"
	LabelItem    = "Item"

	RelHasAbility = "HAS_ABILITY"
	RelBuildsFrom = "BUILDS_FROM"
)

// ParseLabel maps a case-insensitive label name to its node label.
func ParseLabel(s string) (string, bool) {
	for _, label := range []string{LabelHero, LabelAbility, LabelItem} {
		if strings.EqualFold(s, label) {
			return label, true
		}
	}
	return "", false
}

// Node is a graph vertex identified by label and key.
type Node struct {
	Label string
	Key   string
	Name  string
}

// Relationship represents a directed edge in the game data graph.
type Relationship struct {
	From Node
	Type string
	To   Node
}

// Graph holds the nodes and edges derived from collated data.
type Graph struct {
	Nodes         []Node
	Relationships []Relationship
}

// Edges derives hero-ability and item-component relations. Nodes and edges
// are deduplicated; a referenced node without a record of its own is still
// created.
func Edges(heroes *collate.Collection[*collate.Hero], items *collate.Collection[*collate.Item]) *Graph {
	g := &Graph{}
	nodes := make(map[string]int)
	rels := make(map[string]bool)

	addNode := func(n Node) Node {
		id := n.Label + "/" + n.Key
		if i, ok := nodes[id]; ok {
			if g.Nodes[i].Name == "" {
				g.Nodes[i].Name = n.Name
			}
			return g.Nodes[i]
		}
		nodes[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
		return n
	}
	addRel := func(from Node, typ string, to Node) {
		id := from.Label + "/" + from.Key + "-" + typ + "->" + to.Label + "/" + to.Key
		if rels[id] {
			return
		}
		rels[id] = true
		g.Relationships = append(g.Relationships, Relationship{From: from, Type: typ, To: to})
	}

	if heroes != nil {
		for _, key := range heroes.Keys() {
			h, _ := heroes.Get(key)
			hero := addNode(Node{Label: LabelHero, Key: key, Name: h.Name})
			for _, ability := range h.SignatureAbilities() {
				addRel(hero, RelHasAbility, addNode(Node{Label: LabelAbility, Key: ability}))
			}
		}
	}

	if items != nil {
		for _, key := range items.Keys() {
			it, _ := items.Get(key)
			addNode(Node{Label: LabelItem, Key: key, Name: it.Name})
		}
		for _, key := range items.Keys() {
			it, _ := items.Get(key)
			from := addNode(Node{Label: LabelItem, Key: key})
			for _, v := range it.Components.Items() {
				component, ok := vdata.AsString(v)
				if !ok || component == "" {
					continue
				}
				addRel(from, RelBuildsFrom, addNode(Node{Label: LabelItem, Key: component}))
			}
		}
	}

	return g
}

// GraphBuilder loads game data relations into Neo4j.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates key constraints for every node label.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, label := range []string{LabelHero, LabelAbility, LabelItem} {
		c := fmt.Sprintf("CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.key IS UNIQUE", label)
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// Load upserts the nodes and relationships of g with MERGE. Failed
// relationships are logged and skipped.
func (gb *GraphBuilder) Load(ctx context.Context, g *Graph) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, n := range g.Nodes {
		_, err := session.Run(ctx, fmt.Sprintf(`
			MERGE (n:%s {key: $key})
			SET n.name = CASE WHEN $name = '' THEN n.name ELSE $name END
		`, n.Label), map[string]any{
			"key":  n.Key,
			"name": n.Name,
		})
		if err != nil {
			return fmt.Errorf("upsert %s %s: %w", n.Label, n.Key, err)
		}
	}

	log.Info().Int("nodes", len(g.Nodes)).Msg("Loaded graph nodes")

	for _, r := range g.Relationships {
		_, err := session.Run(ctx, fmt.Sprintf(`
			MATCH (a:%s {key: $from})
			MATCH (b:%s {key: $to})
			MERGE (a)-[:%s]->(b)
		`, r.From.Label, r.To.Label, r.Type), map[string]any{
			"from": r.From.Key,
			"to":   r.To.Key,
		})
		if err != nil {
			log.Warn().Err(err).
				Str("from", r.From.Key).
				Str("to", r.To.Key).
				Str("rel", r.Type).
				Msg("Failed to create relationship")
		}
	}

	log.Info().Int("relationships", len(g.Relationships)).Msg("Loaded graph relationships")
	return nil
}
