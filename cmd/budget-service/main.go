package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	bhttp "github.com/radieske/fantasy-betting-league/internal/budget-service/http"
	"github.com/radieske/fantasy-betting-league/internal/budget-service/producer"
	brepo "github.com/radieske/fantasy-betting-league/internal/budget-service/repo"
	"github.com/radieske/fantasy-betting-league/internal/shared/config"
	"github.com/radieske/fantasy-betting-league/internal/shared/db"
	"github.com/radieske/fantasy-betting-league/internal/shared/kafka"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("budget-service", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env), zap.Int64("weekly_budget_cents", cfg.WeeklyBudgetCents))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres guarda orçamento semanal, apostas e parlays
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if err := db.InitSchema(ctx, pg); err != nil {
		log.Fatal("postgres schema", zap.Error(err))
	}

	// Kafka writers (bet_placed / parlay_placed)
	publ := producer.NewKafkaPublisher(
		kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced),
		kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicParlayPlaced),
	)
	defer publ.Close()

	repo := brepo.NewPostgres(pg, cfg.WeeklyBudgetCents)
	api := bhttp.NewServer(log, repo, publ)

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort, // ex: 8082
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Servidor de métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
