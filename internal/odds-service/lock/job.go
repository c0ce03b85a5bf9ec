// Package lock trava as opções de aposta quando o jogo começa.
package lock

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/repo"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

type Locker interface {
	LockStarted(ctx context.Context, now time.Time) ([]repo.LockedGame, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, gameID string) error
}

type Broadcaster interface {
	Publish(ctx context.Context, msg events.Broadcast) error
}

// EventPublisher publica options_locked no Kafka
type EventPublisher interface {
	PublishOptionsLocked(ctx context.Context, e events.OptionsLocked) error
}

type Job struct {
	Log         *zap.Logger
	Repo        Locker
	Cache       Invalidator
	Broadcaster Broadcaster
	Events      EventPublisher
	Now         func() time.Time
}

// Run executa uma rodada: trava, limpa cache e avisa clientes e consumidores
func (j *Job) Run(ctx context.Context) error {
	now := j.Now().UTC()
	locked, err := j.Repo.LockStarted(ctx, now)
	if err != nil {
		return err
	}

	for _, g := range locked {
		metrics.OptionsLocked.Add(float64(g.Options))
		ev := events.OptionsLocked{GameID: g.GameID, Options: g.Options, LockedAt: now}

		if err := j.Cache.Invalidate(ctx, g.GameID); err != nil {
			j.Log.Warn("cache invalidate failed", zap.String("game_id", g.GameID), zap.Error(err))
		}
		if err := j.Broadcaster.Publish(ctx, events.Broadcast{Type: "options_locked", GameID: g.GameID, Data: ev}); err != nil {
			j.Log.Warn("broadcast options_locked", zap.String("game_id", g.GameID), zap.Error(err))
		}
		if err := j.Events.PublishOptionsLocked(ctx, ev); err != nil {
			j.Log.Warn("publish options_locked", zap.String("game_id", g.GameID), zap.Error(err))
		}
		j.Log.Info("options locked", zap.String("game_id", g.GameID), zap.Int64("options", g.Options))
	}
	return nil
}

// Schedule registra o job no cron (com segundos) e o inicia
func Schedule(ctx context.Context, spec string, j *Job) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := j.Run(runCtx); err != nil {
			j.Log.Error("lock job failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
