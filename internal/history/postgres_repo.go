package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"cuisinemap/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// Connect opens a pool and verifies the server is reachable.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return withGoose(pool, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, "migrations")
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	return withGoose(pool, func(db *sql.DB) error {
		return goose.DownContext(ctx, db, "migrations")
	})
}

// MigrationStatus logs the applied state of every migration through goose's logger.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	return withGoose(pool, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, "migrations")
	})
}

func withGoose(pool *pgxpool.Pool, fn func(db *sql.DB) error) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const q = `
		INSERT INTO refresh_runs (id, started_at, status, policy, pairs)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, q, run.ID, run.StartedAt, run.Status, run.Policy, run.Pairs)
	return err
}

func (r *PostgresRepo) FinishRun(ctx context.Context, run *Run) error {
	const q = `
		UPDATE refresh_runs SET
			finished_at = $1,
			status = $2,
			updated = $3,
			failed = $4,
			missing = $5,
			error = $6
		WHERE id = $7`

	_, err := r.db.Exec(ctx, q, run.FinishedAt, run.Status, run.Updated, run.Failed, run.Missing, run.Error, run.ID)
	return err
}

func (r *PostgresRepo) RecordCount(ctx context.Context, snap Snapshot) error {
	const q = `
		INSERT INTO count_snapshots (run_id, cuisine_id, area_id, value, saturated, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, cuisine_id, area_id) DO UPDATE
			SET value = EXCLUDED.value, saturated = EXCLUDED.saturated, fetched_at = EXCLUDED.fetched_at`

	_, err := r.db.Exec(ctx, q, snap.RunID, snap.CuisineID, snap.AreaID, snap.Count.Value, snap.Count.Saturated, snap.FetchedAt)
	return err
}

// ListCounts returns the newest snapshots for a pair, newest first.
func (r *PostgresRepo) ListCounts(ctx context.Context, cuisineID, areaID string, limit int) ([]Snapshot, error) {
	const q = `
		SELECT run_id::text, cuisine_id, area_id, value, saturated, fetched_at
		FROM count_snapshots
		WHERE cuisine_id = $1 AND area_id = $2
		ORDER BY fetched_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, q, cuisineID, areaID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s         Snapshot
			value     int
			saturated bool
		)
		if err := rows.Scan(&s.RunID, &s.CuisineID, &s.AreaID, &value, &saturated, &s.FetchedAt); err != nil {
			return nil, err
		}
		s.Count = models.Count{Value: value, Saturated: saturated}
		out = append(out, s)
	}
	return out, rows.Err()
}

