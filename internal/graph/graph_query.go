package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// RelationshipResult represents a graph relationship.
type RelationshipResult struct {
	From string
	Type string
	To   string
}

// GraphQuerier reads back what GraphBuilder loaded.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// Counts returns the number of nodes per label.
func (gq *GraphQuerier) Counts(ctx context.Context) (map[string]int64, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	counts := make(map[string]int64)
	for _, label := range []string{LabelHero, LabelAbility, LabelItem} {
		result, err := session.Run(ctx, fmt.Sprintf(`MATCH (n:%s) RETURN count(n) AS total`, label), nil)
		if err != nil {
			return nil, fmt.Errorf("count %s nodes: %w", label, err)
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s nodes: %w", label, err)
		}
		total, _ := record.Get("total")
		n, _ := total.(int64)
		counts[label] = n
	}

	log.Debug().Interface("counts", counts).Msg("Graph node counts")
	return counts, nil
}

// Neighbors returns the 1-hop relationships of the node with the given label
// and key, in both directions.
func (gq *GraphQuerier) Neighbors(ctx context.Context, label, key string) ([]RelationshipResult, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, fmt.Sprintf(`
		MATCH (n:%s {key: $key})-[r]->(m)
		RETURN n.key AS from_node, type(r) AS rel_type, m.key AS to_node
		UNION
		MATCH (m)-[r]->(n:%s {key: $key})
		RETURN m.key AS from_node, type(r) AS rel_type, n.key AS to_node
	`, label, label), map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}

	var rels []RelationshipResult
	for result.Next(ctx) {
		record := result.Record()
		from, _ := record.Get("from_node")
		relType, _ := record.Get("rel_type")
		to, _ := record.Get("to_node")

		rels = append(rels, RelationshipResult{
			From: fmt.Sprintf("%v", from),
			Type: fmt.Sprintf("%v", relType),
			To:   fmt.Sprintf("%v", to),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}
	return rels, nil
}
