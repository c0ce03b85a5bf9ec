package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	gateway "github.com/radieske/fantasy-betting-league/internal/api-gateway"
	"github.com/radieske/fantasy-betting-league/internal/shared/config"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("api-gateway", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// targets
	h, err := gateway.Router(log, gateway.Targets{
		Odds:    cfg.OddsURL,
		Slips:   cfg.SlipURL,
		Budgets: cfg.BudgetURL,
	}, cfg.AllowedOrigins)
	if err != nil {
		log.Fatal("gateway routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	go func() {
		log.Info("api-gateway listening", zap.String("addr", srv.Addr),
			zap.String("odds", cfg.OddsURL), zap.String("slips", cfg.SlipURL), zap.String("budgets", cfg.BudgetURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("gateway failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
