package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	ocache "github.com/radieske/fantasy-betting-league/internal/odds-service/cache"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/consumer"
	httpapi "github.com/radieske/fantasy-betting-league/internal/odds-service/http"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/lock"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/repo"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/ws"
	"github.com/radieske/fantasy-betting-league/internal/shared/cache"
	"github.com/radieske/fantasy-betting-league/internal/shared/config"
	"github.com/radieske/fantasy-betting-league/internal/shared/db"
	"github.com/radieske/fantasy-betting-league/internal/shared/kafka"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New("odds-service", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("env", cfg.Env))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if err := db.InitSchema(ctx, pg); err != nil {
		log.Fatal("postgres schema", zap.Error(err))
	}
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	readRepo := repo.NewReadRepo(pg)
	optionsCache := ocache.New(redisClient, cfg.OddsCacheTTL)
	broadcaster := ws.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)

	// hub WebSocket alimentado pelo canal Redis
	hub := ws.NewHub(log, allowOrigin(cfg.AllowedOrigins))
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	// consumer odds_moved
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsMoved, "odds-service")
	defer reader.Close()
	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Cache:       optionsCache,
		Broadcaster: broadcaster,
		OnError:     func(stage string) { log.Debug("odds_moved stage failed", zap.String("stage", stage)) },
	}
	go func() {
		if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("odds_moved consumer stopped", zap.Error(err))
		}
	}()

	// job de trava no kickoff
	lockedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOptionsLocked)
	defer lockedWriter.Close()
	scheduler, err := lock.Schedule(ctx, cfg.LockScheduleSpec, &lock.Job{
		Log:         log,
		Repo:        readRepo,
		Cache:       optionsCache,
		Broadcaster: broadcaster,
		Events:      &lock.KafkaPublisher{Writer: lockedWriter},
		Now:         time.Now,
	})
	if err != nil {
		log.Fatal("lock schedule", zap.String("spec", cfg.LockScheduleSpec), zap.Error(err))
	}
	defer scheduler.Stop()

	// servidor de métricas e health: valida dependências críticas
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	api := &httpapi.API{Log: log, ReadRepo: readRepo, Cache: optionsCache, WS: hub.HandleWS}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// allowOrigin aceita "*" ou uma lista separada por vírgula
func allowOrigin(allowed string) func(r *http.Request) bool {
	if allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	set := map[string]struct{}{}
	for _, o := range strings.Split(allowed, ",") {
		set[strings.TrimSpace(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}
