package pipeline

import (
	"context"
	"fmt"
	"slices"

	"vdata-pipeline/internal/store"
)

// Kinds lists every artifact kind Publish assigns.
var Kinds = []string{KindScripts, KindLocalisation, KindLocale, KindCollated, KindVersion}

// ListArtifacts returns the names of the published artifacts of one kind.
func ListArtifacts(ctx context.Context, dsn, kind string) ([]string, error) {
	if !slices.Contains(Kinds, kind) {
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.ListByKind(ctx, kind)
}

// FetchArtifact returns one published artifact by name.
func FetchArtifact(ctx context.Context, dsn, name string) (*store.Artifact, error) {
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.Get(ctx, name)
}
