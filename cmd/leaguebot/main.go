package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Black-And-White-Club/rsc-league-bot/app"
	bcqueue "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/infrastructure/queue"
	settingsmigrations "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/Black-And-White-Club/rsc-league-bot/config"
	"github.com/Black-And-White-Club/rsc-league-bot/db/bundb"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "leaguebot",
		Usage: "RSC league Discord bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			migrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "connect to Discord and serve commands",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer application.Close()
			return application.Run(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	// withMigrators opens the database for the duration of one subcommand.
	withMigrators := func(fn func(c *cli.Context, cfg *config.Config, migrators map[string]*migrate.Migrator) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := bundb.Open(c.Context, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(c, cfg, map[string]*migrate.Migrator{
				"settings": migrate.NewMigrator(db, settingsmigrations.Migrations),
			})
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, _ *config.Config, migrators map[string]*migrate.Migrator) error {
					for name, migrator := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", name)
						if err := migrator.Init(c.Context); err != nil {
							return fmt.Errorf("%s: %w", name, err)
						}
					}
					return nil
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database, including the report queue schema",
				Action: withMigrators(func(c *cli.Context, cfg *config.Config, migrators map[string]*migrate.Migrator) error {
					for name, migrator := range migrators {
						if err := migrator.Lock(c.Context); err != nil {
							return fmt.Errorf("%s: %w", name, err)
						}
						group, err := migrator.Migrate(c.Context)
						_ = migrator.Unlock(c.Context)
						if err != nil {
							return fmt.Errorf("%s: %w", name, err)
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", name, group)
						}
					}
					return bcqueue.Migrate(c.Context, cfg.Postgres.DSN, cliLogger(), false)
				}),
			},
			{
				Name:  "rollback",
				Usage: "roll back the last migration group",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "queue", Usage: "also roll back one report queue schema version"},
				},
				Action: withMigrators(func(c *cli.Context, cfg *config.Config, migrators map[string]*migrate.Migrator) error {
					for name, migrator := range migrators {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("%s: %w", name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", name, group)
						}
					}
					if c.Bool("queue") {
						return bcqueue.Migrate(c.Context, cfg.Postgres.DSN, cliLogger(), true)
					}
					return nil
				}),
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: withMigrators(func(c *cli.Context, _ *config.Config, migrators map[string]*migrate.Migrator) error {
					name := c.Args().First()
					migrator, ok := migrators[name]
					if !ok {
						return fmt.Errorf("invalid module name: %s", name)
					}
					mf, err := migrator.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", name, mf.Name, mf.Path)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(c *cli.Context, _ *config.Config, migrators map[string]*migrate.Migrator) error {
					for name, migrator := range migrators {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", name)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				}),
			},
		},
	}
}

func cliLogger() *slog.Logger {
	return observability.NewLogger(os.Stdout, "info")
}
