package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-records/internal/admin"
	"github.com/Spok95/school-records/internal/bot"
	"github.com/Spok95/school-records/internal/config"
	"github.com/Spok95/school-records/internal/dashboard"
	"github.com/Spok95/school-records/internal/db"
	"github.com/Spok95/school-records/internal/logging"
	"github.com/Spok95/school-records/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Run wires the server together and blocks until ctx is cancelled or the
// public listener fails.
func Run(ctx context.Context, cfg *config.Config, lg *logging.Log) error {
	log := lg.Named("app")

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(ctx, database, lg.GooseLogger()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := db.NewStore(database)
	resolver := dashboard.NewResolver(store, cfg.Location, cfg.AttendanceWindowDays)

	adm, err := admin.New(database,
		admin.WithLogger(lg.Named("admin")),
		admin.WithLocation(cfg.Location),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ops := StartOps(ctx, cfg.OpsAddr, store, lg.Named("ops"))

	botDone := make(chan struct{})
	if cfg.BotToken != "" {
		if err := startBot(ctx, cfg.BotToken, resolver, lg, botDone); err != nil {
			// бот необязателен: сайт работает и без него
			log.Errorw("telegram bot disabled", "err", err)
			close(botDone)
		}
	} else {
		close(botDone)
	}

	srv := web.NewApp(web.Options{
		Resolver: resolver,
		Log:      lg.Named("web"),
		Admin:    adm.Register,
	})

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.Listen(cfg.HTTPAddr) }()
	log.Infow("listening", "http", cfg.HTTPAddr, "ops", cfg.OpsAddr)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	log.Infow("shutting down")
	cancel()
	if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warnw("http shutdown", "err", err)
	}
	<-botDone
	<-ops.Done()
	return runErr
}

func startBot(ctx context.Context, token string, resolver bot.Resolver, lg *logging.Log, done chan struct{}) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	log := lg.Named("bot")
	log.Infow("bot started", "username", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	b := bot.New(api, resolver, log)
	go func() {
		defer close(done)
		b.Run(ctx, updates)
	}()
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	return nil
}
