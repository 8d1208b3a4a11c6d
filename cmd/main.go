package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akraev/folioterm/config"
	"github.com/akraev/folioterm/data"
	"github.com/akraev/folioterm/data/cache"
	"github.com/akraev/folioterm/data/session"
	"github.com/akraev/folioterm/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/akraev/folioterm/internal/externalApi/trackerApi"
	"github.com/akraev/folioterm/internal/reportGenerator/xlsxGenerator"
	"github.com/akraev/folioterm/internal/scheduler"
	"github.com/akraev/folioterm/internal/service/folioService"
	"github.com/akraev/folioterm/internal/service/sessionService"
	"github.com/akraev/folioterm/internal/transport/cli"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	trackerApiClient := trackerApi.New(cfg)

	var sessionStorage session.Storage
	if cfg.Session.Storage == "redis" {
		redisClient := data.NewRedisClient(cfg)
		defer redisClient.Close()
		sessionStorage = session.NewRedisStorage(redisClient)
	} else {
		fileStorage, err := session.NewFileStorage(cfg.Session.Dir)
		if err != nil {
			slog.Error("can't init session file storage", slog.String("err", err.Error()))
			panic(err)
		}
		sessionStorage = fileStorage
	}

	sessionSrv := sessionService.New(trackerApiClient, sessionStorage)

	memCache := cache.NewMemoryCache(cfg.Cache.PortfoliosExpiration, cfg.Cache.HoldingsExpiration)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage folioService.CloudStorage
	sched := scheduler.New()

	if cfg.Report.DriveCredentialsFile != "" {
		driveApi := googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
		sched.NewIntervalJob("delete old drive reports", driveApi.DeleteOldReports, cfg.Jobs.ReportCleanupInterval, false)
	}

	folioSrv := folioService.New(trackerApiClient, memCache, sessionSrv, reportGenerator, cloudStorage)

	sched.NewIntervalJob("refresh holdings cache", folioSrv.RefreshHoldingsCache, cfg.Jobs.RefreshHoldingsInterval, false)
	sched.Start()
	defer sched.Stop()

	ctrl := cli.NewController(sessionSrv, folioSrv, os.Stdout)
	app := cli.NewApp(ctrl, sessionSrv, os.Stdin, os.Stdout)

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("app stopped with error", slog.String("err", err.Error()))
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
