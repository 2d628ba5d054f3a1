package bcqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// Migrate applies River's schema. Rolling back undoes one version.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger, rollback bool) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	direction, opts := rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}
	if rollback {
		direction, opts = rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: 1}
	}
	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.InfoContext(ctx, "River migration applied",
			slog.String("direction", string(res.Direction)),
			slog.Int("version", v.Version),
		)
	}
	return nil
}
