package database

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/MANUEL666GAMER/Biblioteca/migrations"
)

// DB owns the pgx pool. SQL is a database/sql view over the same pool for
// the repositories and goose.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &DB{Pool: p, SQL: stdlib.OpenDBFromPool(p)}, nil
}

func (d *DB) Ping(ctx context.Context) error { return d.Pool.Ping(ctx) }

func (d *DB) Close() {
	_ = d.SQL.Close()
	d.Pool.Close()
}

// Migrate applies every pending migration.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.SQL)
}

// MigrationsDir is the goose directory inside migrations.FS.
const MigrationsDir = "."

// UseEmbeddedMigrations points goose at the embedded SQL files.
func UseEmbeddedMigrations() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if err := UseEmbeddedMigrations(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, MigrationsDir)
}
