package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrosavjet/agro-bot/internal/config"
	"github.com/agrosavjet/agro-bot/internal/metrics"
	"github.com/agrosavjet/agro-bot/internal/repository/postgres"
	"github.com/agrosavjet/agro-bot/internal/service"
	"github.com/agrosavjet/agro-bot/internal/telegram"
	"github.com/agrosavjet/agro-bot/internal/websearch/perplexity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	searcher := perplexity.New(perplexity.Config{
		APIKey:        cfg.Perplexity.APIKey,
		BaseURL:       cfg.Perplexity.BaseURL,
		Model:         cfg.Perplexity.Model,
		Timeout:       cfg.Perplexity.Timeout,
		HealthTimeout: cfg.Perplexity.HealthTimeout,
	}, logger)

	m := metrics.New()

	advisor := service.NewAdvisorService(service.AdvisorDeps{
		Searcher: searcher,
		History:  postgres.NewHistoryRepo(db),
		Logger:   logger,
		Metrics:  m,
	})

	if !advisor.Healthy(ctx) {
		logger.Warn("external search is not reachable at startup")
	}

	bot, err := telegram.New(telegram.BotConfig{
		Token:             cfg.Telegram.Token,
		Debug:             cfg.Telegram.Debug,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		HistoryLimit:      cfg.History.ListLimit,
	}, advisor, logger, m)
	if err != nil {
		logger.Fatal("create telegram bot", zap.Error(err))
	}

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: metrics.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown with error", zap.Error(err))
	}

	logger.Info("bot stopped")
}
