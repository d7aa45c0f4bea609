package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/cache"
	"github.com/t77yq/campus-bot/internal/config"
	"github.com/t77yq/campus-bot/internal/monitor"
	"github.com/t77yq/campus-bot/internal/notify"
	"github.com/t77yq/campus-bot/internal/reminder"
	"github.com/t77yq/campus-bot/internal/scheduler"
	"github.com/t77yq/campus-bot/internal/service"
	"github.com/t77yq/campus-bot/internal/sheets"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to NATS
	opts := []nats.Option{
		nats.Name(cfg.AppName),
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.Timeout(cfg.NATS.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected",
				zap.String("url", nc.ConnectedUrl()))
		}),
	}

	var nc *nats.Conn
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		nc, err = nats.Connect(cfg.NATS.URLs[0], opts...)
		if err == nil {
			break
		}
		logger.Warn("Failed to connect to NATS, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	if err != nil {
		logger.Fatal("Failed to connect to NATS after retries", zap.Error(err))
	}
	defer nc.Close()

	logger.Info("Connected to NATS successfully",
		zap.String("url", nc.ConnectedUrl()))

	// Wire components
	source := sheets.NewHTTPSource(sheets.Config{
		BaseURL:       cfg.Sheets.BaseURL,
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		APIKey:        cfg.Sheets.APIKey,
		Timeout:       cfg.Sheets.Timeout,
	}, logger)

	dataCache := cache.New(source, cfg.CacheDuration, logger)
	sender := notify.NewNATSSender(nc, logger)
	dispatcher := reminder.New(dataCache, sender, cfg.Recipients, logger)
	health := monitor.NewHealthChecker(source, dataCache, logger)
	queries := service.NewQueryService(dataCache, logger)

	// Register recurring jobs
	sched := scheduler.New(logger)

	jobs := []struct {
		id      string
		label   string
		trigger scheduler.Trigger
		handler scheduler.Handler
	}{
		{
			id:      "payment-reminder",
			label:   "Daily payment reminder",
			trigger: scheduler.Daily{Hour: 9, Minute: 5},
			handler: dispatcher.SendPaymentReminders,
		},
		{
			id:      "events-reminder",
			label:   "Weekly events reminder",
			trigger: scheduler.Weekly{Weekday: time.Monday, Hour: 9, Minute: 6},
			handler: dispatcher.SendWeeklyEvents,
		},
		{
			id:      "cache-sweep",
			label:   "Weekly cache sweep",
			trigger: scheduler.Weekly{Weekday: time.Sunday, Hour: 2, Minute: 0},
			handler: func(ctx context.Context) error {
				dataCache.InvalidateAll()
				return nil
			},
		},
		{
			id:      "health-check",
			label:   "Health check",
			trigger: scheduler.EveryHours{N: 6},
			handler: health.Run,
		},
	}

	for _, j := range jobs {
		if err := sched.Register(j.id, j.label, j.trigger, j.handler); err != nil {
			logger.Fatal("Failed to register job",
				zap.String("id", j.id),
				zap.Error(err))
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Start the interactive query responder and the scheduler
	responder := service.NewResponder(nc, queries, sched.Status, logger)
	if err := responder.Start(ctx); err != nil {
		logger.Fatal("Failed to start responder", zap.Error(err))
	}

	sched.Start(ctx)
	for _, status := range sched.Status() {
		logger.Info("Job scheduled",
			zap.String("id", status.ID),
			zap.Time("next_run", status.NextRun))
	}

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown: no new fires, in-flight jobs complete
	sched.Stop()

	if err := dataCache.Close(); err != nil {
		logger.Warn("Cache shutdown", zap.Error(err))
	}
	if err := nc.Drain(); err != nil {
		logger.Warn("NATS drain", zap.Error(err))
	}

	logger.Info("Bot shutting down gracefully")
}
