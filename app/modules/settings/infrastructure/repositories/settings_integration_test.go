//go:build integration

package settingsdb_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	settingsdb "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories"
	"github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func TestRepository_RoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := settingsdb.NewRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, db, "g1", "AuthToken")
	require.True(t, errors.Is(err, settingsdb.ErrNotFound))

	require.NoError(t, repo.Set(ctx, db, "g1", "AuthToken", json.RawMessage(`"abc"`)))
	require.NoError(t, repo.Set(ctx, db, "g1", "AuthToken", json.RawMessage(`"def"`)))
	require.NoError(t, repo.Set(ctx, db, "g1", "TopLevelGroup", json.RawMessage(`null`)))
	require.NoError(t, repo.Set(ctx, db, "g2", "AuthToken", json.RawMessage(`"other"`)))

	raw, err := repo.Get(ctx, db, "g1", "AuthToken")
	require.NoError(t, err)
	require.JSONEq(t, `"def"`, string(raw))

	raw, err = repo.Get(ctx, db, "g1", "TopLevelGroup")
	require.NoError(t, err)
	require.JSONEq(t, `null`, string(raw))

	rows, err := repo.List(ctx, db, "g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.Delete(ctx, db, "g1", "AuthToken"))
	_, err = repo.Get(ctx, db, "g1", "AuthToken")
	require.True(t, errors.Is(err, settingsdb.ErrNotFound))

	require.NoError(t, repo.DeleteGuild(ctx, db, "g1"))
	rows, err = repo.List(ctx, db, "g1")
	require.NoError(t, err)
	require.Empty(t, rows)

	raw, err = repo.Get(ctx, db, "g2", "AuthToken")
	require.NoError(t, err)
	require.JSONEq(t, `"other"`, string(raw))
}
