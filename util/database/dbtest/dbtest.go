// Package dbtest starts a throwaway Postgres for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/MANUEL666GAMER/Biblioteca/util/database"
)

// New returns a migrated database. It skips under -short.
func New(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("biblioteca"),
		postgres.WithUsername("biblioteca"),
		postgres.WithPassword("biblioteca"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start Postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, dsn)
	require.NoError(t, err, "Failed to connect to Postgres")
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx), "Failed to run migrations")
	return db
}

// Seed inserts a category, a book and two patrons and returns their ids.
func Seed(t *testing.T, db *database.DB) (categoryID, bookID, user1, user2 int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.SQL.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ('Novela') RETURNING id`).Scan(&categoryID))
	require.NoError(t, db.SQL.QueryRowContext(ctx,
		`INSERT INTO books (title, author, category_id) VALUES ('Libro A', 'Autor', $1) RETURNING id`, categoryID).Scan(&bookID))
	require.NoError(t, db.SQL.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email) VALUES ('Ana', 'Uno', 'ana@correo.mx') RETURNING id`).Scan(&user1))
	require.NoError(t, db.SQL.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email) VALUES ('Beto', 'Dos', 'beto@correo.mx') RETURNING id`).Scan(&user2))
	return categoryID, bookID, user1, user2
}
