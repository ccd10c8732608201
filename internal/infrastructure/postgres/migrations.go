package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration paso de esquema versionado. Se aplican en orden y una sola vez.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations esquema del servicio: tokens del libro remoto y log de sincronización.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "acumulus_tokens",
		SQL: `
CREATE TABLE IF NOT EXISTS acumulus_tokens (
	invoice_id  BIGINT PRIMARY KEY,
	token       TEXT        NOT NULL,
	entry_id    BIGINT      NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	},
	{
		Version: 2,
		Name:    "sync_events",
		SQL: `
CREATE TABLE IF NOT EXISTS sync_events (
	id            UUID PRIMARY KEY,
	invoice_id    BIGINT        NOT NULL,
	operation     TEXT          NOT NULL,
	outcome       TEXT          NOT NULL,
	remote_status TEXT          NOT NULL DEFAULT '',
	total         NUMERIC(14,2) NOT NULL DEFAULT 0,
	messages      TEXT          NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ   NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sync_events_invoice ON sync_events (invoice_id, created_at)`,
	},
	{
		Version: 3,
		Name:    "acumulus_tokens_credited_at",
		SQL:     `ALTER TABLE acumulus_tokens ADD COLUMN IF NOT EXISTS credited_at TIMESTAMPTZ`,
	},
}

const schemaMigrationsDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INT PRIMARY KEY,
	name       TEXT        NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate aplica las migraciones pendientes, cada una en su propia transacción.
// Devuelve las versiones aplicadas en esta ejecución.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]int, error) {
	if _, err := pool.Exec(ctx, schemaMigrationsDDL); err != nil {
		return nil, fmt.Errorf("crear schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return nil, err
	}

	var done []int
	for _, m := range Migrations {
		if applied[m.Version] {
			continue
		}
		if err := apply(ctx, pool, m); err != nil {
			return done, err
		}
		done = append(done, m.Version)
	}
	return done, nil
}

func appliedVersions(ctx context.Context, q Querier) (map[int]bool, error) {
	rows, err := q.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("leer schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		out[v] = true
	}
	return out, rows.Err()
}

func apply(ctx context.Context, pool *pgxpool.Pool, m Migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("migración %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return fmt.Errorf("registrar migración %d: %w", m.Version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
