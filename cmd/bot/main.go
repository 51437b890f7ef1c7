package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"karmabot/internal/interfaces"
	"karmabot/internal/models"
	"karmabot/internal/pkg"
	"karmabot/internal/pkg/caching"
	"karmabot/internal/pkg/limiter"
	"karmabot/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	tele "gopkg.in/telebot.v3"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

const (
	contextContainer = "context-container"
	contextRedis     = "context-redis"
	contextPostgres  = "context-postgres"
)

func main() {
	app := &cli.App{
		Name: "bot-telegram",
		Commands: []*cli.Command{
			commandBot(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandBot() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Action: action,
	}
}

func action(c *cli.Context) error {
	vs, err := env.EnvsRequired(
		"BOT_TOKEN",
		"JWT_SECRET",
		"DB_DSN",
	)
	if err != nil {
		return err
	}

	container := newContainer(vs)

	dbRedis, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return err
	}

	pref := tele.Settings{
		Token:  vs["BOT_TOKEN"],
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Callback() != nil {
				defer c.Respond()
			}

			c.Set(contextContainer, container)
			c.Set(contextPostgres, postgresDB)
			c.Set(contextRedis, dbRedis)

			return next(c)
		}
	})

	b.Handle("/start", commandStart)
	b.Handle("/daily", commandDaily)
	b.Handle("/stats", commandStats)
	b.Handle("/top", commandTop)
	b.Handle("/topref", commandTopRef)
	b.Handle("/ref", commandRef)
	b.Handle("/newchallenge", commandNewChallenge)
	b.Handle(tele.OnText, handleDraftInput)

	handleStarCommands(b)

	log.Println("bot started")
	b.Start()

	return nil
}

func commandStart(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}

	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := context.Background()
	user, err := serviceUser.FindOrCreateUser(ctx, &models.UserFromAuth{
		ID:        sender.ID,
		Username:  sender.Username,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		IsBot:     sender.IsBot,
	})
	if err != nil {
		return c.Send(fmt.Sprintf("error %s", err.Error()))
	}

	// deep-link payload: /start ref_123456
	if user.IsNewUser {
		if inviterID := pkg.ParseReferrerID(c.Message().Payload); inviterID != 0 {
			if err := serviceUser.LinkReferral(ctx, user, inviterID); err != nil {
				log.Println(err)
			}
		}
	}

	return nil
}

func commandDaily(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}

	ctx := context.Background()
	amount, err := serviceUser.ClaimDaily(ctx, c.Sender().ID)
	if err != nil {
		msg := "⏳ Daily reward is not ready yet. Come back later!"
		if user, err := serviceUser.FindUserByID(ctx, c.Sender().ID); err == nil && user.LastDailyClaim != nil {
			next := user.LastDailyClaim.Add(services.DAILY_COOLDOWN)
			msg = fmt.Sprintf("⏳ Daily reward is not ready yet. Come back in about %d h!", pkg.HoursUntil(time.Now(), next))
		}
		return c.Send(msg)
	}

	return c.Send(fmt.Sprintf("🎁 Daily reward: +%d karma!", amount))
}

func commandStats(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}

	stats, err := serviceUser.Stats(context.Background(), c.Sender().ID)
	if err != nil {
		return c.Send(fmt.Sprintf("error %s", err.Error()))
	}

	premium := "no"
	if stats.User.IsPremium {
		premium = "yes"
	}

	return c.Send(fmt.Sprintf(
		"📊 <b>Your stats</b>\n\nKarma: %d\nLevel: %d\nPremium: %s\nInvited friends: %d",
		stats.User.Karma, stats.User.Level, premium, stats.InviteeCount,
	), &tele.SendOptions{ParseMode: tele.ModeHTML})
}

func commandTop(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](container)
	if err != nil {
		return err
	}

	items, err := serviceLeaderboard.Karma(context.Background())
	if err != nil {
		return c.Send(fmt.Sprintf("error %s", err.Error()))
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>Karma leaderboard</b>\n\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%d. @%s — level %d\n", item.Rank, item.Username, item.Level))
	}

	return c.Send(sb.String(), &tele.SendOptions{ParseMode: tele.ModeHTML})
}

func commandTopRef(c tele.Context) error {
	container, err := getContextContainer(c)
	if err != nil {
		return err
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](container)
	if err != nil {
		return err
	}

	items, err := serviceLeaderboard.Referral(context.Background())
	if err != nil {
		return c.Send(fmt.Sprintf("error %s", err.Error()))
	}

	var sb strings.Builder
	sb.WriteString("🤝 <b>Referral leaderboard</b>\n\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%d. @%s — %d invited\n", item.Rank, item.Username, int(item.Score)))
	}

	return c.Send(sb.String(), &tele.SendOptions{ParseMode: tele.ModeHTML})
}

func commandRef(c tele.Context) error {
	botName := os.Getenv("BOT_USERNAME")
	link := fmt.Sprintf("https://t.me/%s?start=ref_%d", botName, c.Sender().ID)
	return c.Send(fmt.Sprintf("🔗 Your invite link:\n%s", link))
}

func newContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		})
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_CACHE")
		if url == "" {
			url = os.Getenv("REDIS_URL")
		}
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})

	do.ProvideNamed(injector, "redis-mutex", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_MUTEX")
		if url == "" {
			url = os.Getenv("REDIS_URL")
		}
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_LIMITER")
		if url == "" {
			url = os.Getenv("REDIS_URL")
		}
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Bot, error) {
		return services.NewBot(vs["BOT_TOKEN"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceKarma, error) {
		return services.NewServiceKarma(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceChallenge, error) {
		return services.NewServiceChallenge(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceHabit, error) {
		return services.NewServiceHabit(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceLeaderboard, error) {
		return services.NewServiceLeaderboard(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServicePayment, error) {
		return services.NewServicePayment(injector)
	})

	return injector
}
