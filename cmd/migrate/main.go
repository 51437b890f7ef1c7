package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"

	"karmabot/internal/datastore"
	"karmabot/internal/models"
	"karmabot/internal/services"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableHabit(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableChallenge(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableAchievement(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableKarmaEvent(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTablePayment(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_SERVER_MODE, Value: "production"},
				{Key: services.CONFIG_REF_BONUS, Value: strconv.Itoa(services.REF_BONUS_DEFAULT)},
				{Key: services.CONFIG_DAILY_MIN, Value: strconv.Itoa(services.DAILY_MIN_DEFAULT)},
				{Key: services.CONFIG_DAILY_MAX, Value: strconv.Itoa(services.DAILY_MAX_DEFAULT)},
				{Key: services.CONFIG_KARMA_HABIT_COMPLETE, Value: strconv.Itoa(services.KARMA_HABIT_COMPLETE_DEFAULT)},
				{Key: services.CONFIG_KARMA_PUBLIC_JOIN, Value: strconv.Itoa(services.KARMA_PUBLIC_JOIN_DEFAULT)},
				{Key: services.CONFIG_COMMISSION_PCT, Value: strconv.Itoa(services.COMMISSION_PCT_DEFAULT)},
				{Key: services.CONFIG_PREMIUM_DAYS, Value: strconv.Itoa(services.PREMIUM_DAYS_DEFAULT)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.LEADERBOARD_DEFAULT_LIMIT)},
				{Key: services.CONFIG_REF_LEADERBOARD_LIMIT, Value: strconv.Itoa(services.REFERRAL_LEADERBOARD_DEFAULT_LIMIT)},
				{Key: services.CONFIG_PREMIUM_PRICE_STARS, Value: strconv.Itoa(services.PREMIUM_PRICE_STARS_DEFAULT)},
				{Key: services.CONFIG_KARMA_PACK_PRICE_STARS, Value: strconv.Itoa(services.KARMA_PACK_PRICE_STARS_DEFAULT)},
				{Key: services.CONFIG_TEXT_NEW_USER, Value: "✨ Welcome to KarmaBot! Build habits, join challenges and earn karma."},
			}

			for _, config := range configs {
				_, err = db.NewInsert().Model(&config).Exec(ctx)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
