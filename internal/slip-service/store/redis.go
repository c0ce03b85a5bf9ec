package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

const maxTxRetries = 8

// Redis guarda cada boletim como JSON em "slip:{id}" com expiração
type Redis struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedis(r *redis.Client, ttl time.Duration) *Redis { return &Redis{R: r, TTL: ttl} }

func keySlip(id string) string { return "slip:" + id }

func (s *Redis) Get(ctx context.Context, id string) (*betslip.Slip, error) {
	b, err := s.R.Get(ctx, keySlip(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(b)
}

func (s *Redis) Create(ctx context.Context, slip *betslip.Slip) (*betslip.Slip, error) {
	b, err := json.Marshal(slip)
	if err != nil {
		return nil, err
	}
	ok, err := s.R.SetNX(ctx, keySlip(slip.ID), b, s.TTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.Get(ctx, slip.ID)
	}
	return slip, nil
}

// Update usa WATCH/MULTI: se outra requisição gravar no meio, a transação é refeita
func (s *Redis) Update(ctx context.Context, id string, fn func(*betslip.Slip) error) (*betslip.Slip, error) {
	k := keySlip(id)
	var out *betslip.Slip

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		slip, err := decode(b)
		if err != nil {
			return err
		}
		if err := fn(slip); err != nil {
			return err
		}
		nb, err := json.Marshal(slip)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, nb, s.TTL)
			return nil
		})
		if err == nil {
			out = slip
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.R.Watch(ctx, txf, k)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			metrics.SlipStoreConflicts.Inc()
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func decode(b []byte) (*betslip.Slip, error) {
	var s betslip.Slip
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode slip: %w", err)
	}
	return &s, nil
}
