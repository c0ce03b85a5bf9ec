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

	"github.com/radieske/fantasy-betting-league/internal/shared/cache"
	"github.com/radieske/fantasy-betting-league/internal/shared/config"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/budget"
	shttp "github.com/radieske/fantasy-betting-league/internal/slip-service/http"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/oddsclient"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/service"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("slip-service", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env), zap.String("store", cfg.SlipStore))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// boletins no Redis; "memory" serve para rodar local sem dependências
	var (
		st     store.Store
		health metrics.HealthFunc
	)
	switch cfg.SlipStore {
	case "memory":
		st = store.NewMemory()
		health = func(context.Context) error { return nil }
	default:
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		st = store.NewRedis(rdb, cfg.SlipTTL)
		health = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	svc := service.New(log, st, oddsclient.New(cfg.OddsURL), budget.New(cfg.BudgetURL))
	api := shttp.NewServer(log, svc)

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort, // ex: 8083
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, health)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
