package migrations

import (
	"context"
	"fmt"

	settingsdb "github.com/Black-And-White-Club/rsc-league-bot/app/modules/settings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating guild_settings table...")
			if _, err := db.NewCreateTable().Model((*settingsdb.GuildSetting)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("guild_settings table created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping guild_settings table...")
			if _, err := db.NewDropTable().Model((*settingsdb.GuildSetting)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("guild_settings table dropped successfully!")
			return nil
		},
	)
}
