package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Spok95/school-records/internal/app"
	"github.com/Spok95/school-records/internal/config"
	"github.com/Spok95/school-records/internal/logging"
	"github.com/Spok95/school-records/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	if !cfg.IsProd() {
		lg.Sugar.Debugw("config", "http", cfg.HTTPAddr, "ops", cfg.OpsAddr, "tz", cfg.Location.String(),
			"attendance_window_days", cfg.AttendanceWindowDays, "bot", cfg.BotToken != "")
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, lg); err != nil {
		observability.CaptureErr(err)
		lg.Sugar.Errorw("server stopped", "err", err)
		flush()
		lg.Closer()
		os.Exit(1)
	}
}
