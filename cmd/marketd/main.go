package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"momentum/internal/api"
	"momentum/internal/broker"
	"momentum/internal/config"
	"momentum/internal/db"
	"momentum/internal/external"
	"momentum/internal/logging"
	"momentum/internal/notifications"
	"momentum/internal/repository"
	"momentum/internal/risk"
	"momentum/internal/scheduler"
	"momentum/internal/strategy"
	"momentum/internal/trader"
	"momentum/internal/updater"
)

const banner = `
╔══════════════════════════════════════╗
║      NYSE Momentum Trader v0.3       ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		pool.Close()
		log.Info().Msg("database pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		log.Fatal().Err(err).Msg("database test query failed")
	}
	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	// Repos
	quoteRepo := repository.NewQuoteRepo(pool)
	logRepo := repository.NewStrategyLogRepo(pool)

	// Brokerage and data clients
	brk := broker.New(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, cfg.AlpacaBaseURL)
	data := broker.NewDataClient(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret)

	// Symbol universe, scraped at most once per TTL
	universe := external.NewUniverseCache(
		external.NewEoddataClient(),
		time.Duration(cfg.UniverseCacheHours)*time.Hour,
	)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Jobs
	upd := updater.New(universe, data, quoteRepo, cfg.QuoteChunkSize)
	if cfg.DebugCSVPath != "" {
		f, err := os.Create(cfg.DebugCSVPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DebugCSVPath).Msg("cannot open debug CSV")
		}
		defer f.Close()
		upd.DebugOut = f
		log.Warn().Str("path", cfg.DebugCSVPath).Msg("updater debug mode: quotes go to CSV, not the warehouse")
	}

	params := strategy.Params{
		Window:        cfg.MomentumWindow,
		MinPeriods:    cfg.MomentumMinPeriods,
		PortfolioSize: cfg.PortfolioSize,
	}
	if err := params.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid momentum parameters")
	}

	trd := trader.New(trader.Config{
		Params:       params,
		LookbackDays: cfg.HistoryLookbackDays,
		StrategyName: cfg.StrategyName,
		RiskLimits: risk.Limits{
			MaxOrdersPerRun:     cfg.MaxOrdersPerRun,
			MaxOrderNotionalUSD: cfg.MaxOrderNotionalUSD,
		},
		DryRun: cfg.DryRun,
	}, brk, quoteRepo, logRepo, notify)

	updateAt, err := scheduler.ParseTimeOfDay(cfg.UpdateTime)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid UPDATE_TIME")
	}
	tradeAt, err := scheduler.ParseTimeOfDay(cfg.TradeTime)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRADE_TIME")
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin, params, cfg.HistoryLookbackDays)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server error")
		}
	}()

	// 2. Daily scheduler
	sched := scheduler.NewDailyScheduler(brk, scheduler.Jobs{
		Update: upd.Run,
		Trade:  trd.Run,
	}, scheduler.Config{
		UpdateAt: updateAt,
		TradeAt:  tradeAt,
		Location: cfg.Location(),
	}, notify)
	sched.Start(ctx)

	log.Info().Msg("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API shutdown error")
	}
	log.Info().Msg("shutdown complete")
}
