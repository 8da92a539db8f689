package pipeline

import (
	"context"
	"fmt"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/config"
	"vdata-pipeline/internal/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// LoadGraph connects to the configured Neo4j instance and loads the
// hero-ability and item-component relations of res.
func LoadGraph(ctx context.Context, cfg *config.Config, res *collate.Result) error {
	driver, err := connectGraph(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graph.NewGraphBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}
	if err := builder.Load(ctx, graph.Edges(res.Heroes, res.Items)); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	counts, err := graph.NewGraphQuerier(driver).Counts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count graph nodes")
		return nil
	}
	log.Info().
		Int64("heroes", counts[graph.LabelHero]).
		Int64("abilities", counts[graph.LabelAbility]).
		Int64("items", counts[graph.LabelItem]).
		Msg("Graph loaded")
	return nil
}

// Neighbors returns the relationships of the node with the given label and
// key in the configured graph.
func Neighbors(ctx context.Context, cfg *config.Config, label, key string) ([]graph.RelationshipResult, error) {
	driver, err := connectGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer driver.Close(ctx)

	return graph.NewGraphQuerier(driver).Neighbors(ctx, label, key)
}

func connectGraph(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
