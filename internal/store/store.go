// Package store persists published artifacts in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vdata-pipeline/internal/store/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Artifact is one published JSON document.
type Artifact struct {
	// Name is the path relative to the output directory, e.g. scripts/heroes.json.
	Name          string
	Kind          string
	Content       []byte
	Hash          string
	ClientVersion string
	UpdatedAt     time.Time
}

// Store reads and writes artifacts.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate applies the embedded migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open sql connection for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("Database migrations applied")
	return nil
}

// Upsert inserts or replaces an artifact. It reports false when the stored
// artifact already has the same hash.
func (s *Store) Upsert(ctx context.Context, a Artifact) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO artifacts (name, kind, content, hash, client_version, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, now())
		ON CONFLICT (name) DO UPDATE
		SET kind = EXCLUDED.kind,
		    content = EXCLUDED.content,
		    hash = EXCLUDED.hash,
		    client_version = EXCLUDED.client_version,
		    updated_at = now()
		WHERE artifacts.hash <> EXCLUDED.hash
	`, a.Name, a.Kind, string(a.Content), a.Hash, a.ClientVersion)
	if err != nil {
		return false, fmt.Errorf("upsert artifact %s: %w", a.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns the artifact stored under name.
func (s *Store) Get(ctx context.Context, name string) (*Artifact, error) {
	var (
		a       Artifact
		content string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT name, kind, content::text, hash, client_version, updated_at
		FROM artifacts WHERE name = $1
	`, name).Scan(&a.Name, &a.Kind, &content, &a.Hash, &a.ClientVersion, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get artifact %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", name, err)
	}
	a.Content = []byte(content)
	return &a, nil
}

// Hash returns the stored hash of an artifact.
func (s *Store) Hash(ctx context.Context, name string) (string, bool, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT hash FROM artifacts WHERE name = $1`, name).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get artifact hash %s: %w", name, err)
	}
	return hash, true, nil
}

// Hashes returns the hash of every stored artifact by name.
func (s *Store) Hashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, hash FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("list artifact hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, hash string
		if err := rows.Scan(&name, &hash); err != nil {
			return nil, fmt.Errorf("scan artifact hash: %w", err)
		}
		out[name] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifact hashes: %w", err)
	}
	return out, nil
}

// ListByKind returns the names of the artifacts of one kind, sorted.
func (s *Store) ListByKind(ctx context.Context, kind string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM artifacts WHERE kind = $1 ORDER BY name`, kind)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return names, nil
}
