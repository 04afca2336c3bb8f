package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/api/routes"
	"github.com/ArowuTest/forum-lottery-backend/internal/config"
	"github.com/ArowuTest/forum-lottery-backend/internal/handlers"
	"github.com/ArowuTest/forum-lottery-backend/internal/jobs"
	"github.com/ArowuTest/forum-lottery-backend/internal/logging"
	mongorepo "github.com/ArowuTest/forum-lottery-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/forum-lottery-backend/internal/services"
	"github.com/ArowuTest/forum-lottery-backend/pkg/mongodb"
	"github.com/ArowuTest/forum-lottery-backend/pkg/webhook"
	"golang.org/x/exp/slog"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, 10*time.Second)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	eventRepo := mongorepo.NewLotteryEventRepository(db)
	winnerRepo := mongorepo.NewWinnerRepository(db)
	participantRepo := mongorepo.NewParticipantRepository(db)
	lockRepo := mongorepo.NewDrawLockRepository(db)

	sinks := services.MultiSink{services.LogSink{}}
	if cfg.Webhook.URL != "" {
		client := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.APIKey, cfg.Webhook.Timeout)
		sinks = append(sinks, services.NewWebhookSink(client))
		slog.Info("Publishing draw results to webhook", "url", cfg.Webhook.URL)
	}
	resultsSink := services.NewAsyncSink(sinks, cfg.Webhook.QueueSize, cfg.Webhook.Timeout)

	drawService := services.NewDrawService(eventRepo, participantRepo, lockRepo,
		services.WithLockTTL(cfg.Draw.LockTTL),
		services.WithResultsSink(resultsSink),
	)
	eventService := services.NewLotteryEventService(eventRepo, winnerRepo, participantRepo)

	lotteryHandler := handlers.NewLotteryHandler(drawService, eventService, cfg.Draw.RequestTimeout)
	router := routes.SetupRouter(cfg, lotteryHandler, mongoClient)

	var drawJob *jobs.DrawJob
	if cfg.Draw.SchedulerEnabled {
		drawJob = jobs.NewDrawJob(eventService, drawService, cfg.Draw.RequestTimeout)
	}
	scheduler, err := startScheduler(cfg.Draw.Schedule, drawJob)
	if err != nil {
		slog.Error("Failed to start draw scheduler", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Draws in flight publish through the sink, so it closes after both producers stop.
	if scheduler != nil {
		<-scheduler.Stop().Done()
		stats := drawJob.Stats()
		slog.Info("Draw scheduler stopped", "runs", stats.Runs, "drawn", stats.Drawn, "failures", stats.Failures)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	resultsSink.Close()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		slog.Error("Error disconnecting from MongoDB", "error", err)
	}
	slog.Info("Server exiting")
}
