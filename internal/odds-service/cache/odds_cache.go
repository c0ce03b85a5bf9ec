package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/dto"
)

// Cache guarda as opções de cada jogo no Redis
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyGame(gameID string) string { return "odds:game:" + gameID }

func (c *Cache) GetOptions(ctx context.Context, gameID string) (dto.GameOptions, bool, error) {
	var out dto.GameOptions
	b, err := c.R.Get(ctx, keyGame(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	return out, true, json.Unmarshal(b, &out)
}

func (c *Cache) SetOptions(ctx context.Context, v dto.GameOptions) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyGame(v.Game.ID), b, c.TTL).Err()
}

// Invalidate remove o jogo do cache; chamado quando odds mudam ou o jogo trava
func (c *Cache) Invalidate(ctx context.Context, gameID string) error {
	return c.R.Del(ctx, keyGame(gameID)).Err()
}
