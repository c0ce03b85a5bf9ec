package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

type recorder struct {
	invalidated []string
	published   []events.Broadcast
	cacheErr    error
	pubErr      error
}

func (r *recorder) Invalidate(_ context.Context, gameID string) error {
	r.invalidated = append(r.invalidated, gameID)
	return r.cacheErr
}

func (r *recorder) Publish(_ context.Context, msg events.Broadcast) error {
	r.published = append(r.published, msg)
	return r.pubErr
}

func newProcessor(rec *recorder, stages *[]string) *Processor {
	return &Processor{
		Log:         zap.NewNop(),
		Cache:       rec,
		Broadcaster: rec,
		OnError:     func(s string) { *stages = append(*stages, s) },
	}
}

func TestHandle_InvalidatesAndBroadcasts(t *testing.T) {
	rec := &recorder{}
	var stages []string
	p := newProcessor(rec, &stages)

	err := p.Handle(context.Background(), []byte(`{"game_id":"g1","new_option_id":"o9","american_odds":-105,"bookmaker":"draftkings"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, rec.invalidated)
	require.Len(t, rec.published, 1)
	assert.Equal(t, "odds_moved", rec.published[0].Type)
	assert.Equal(t, "g1", rec.published[0].GameID)
	assert.Empty(t, stages)
}

func TestHandle_CacheFailureStillBroadcasts(t *testing.T) {
	rec := &recorder{cacheErr: errors.New("redis down")}
	var stages []string
	p := newProcessor(rec, &stages)

	require.NoError(t, p.Handle(context.Background(), []byte(`{"game_id":"g1","new_option_id":"o9","american_odds":120}`)))
	assert.Len(t, rec.published, 1)
	assert.Equal(t, []string{"cache"}, stages)
}

func TestHandle_RejectsBadMessages(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"no game":      `{"new_option_id":"o9","american_odds":120}`,
		"zero odds":    `{"game_id":"g1","new_option_id":"o9","american_odds":0}`,
		"empty object": `{}`,
	}
	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			var stages []string
			p := newProcessor(rec, &stages)

			assert.Error(t, p.Handle(context.Background(), []byte(msg)))
			assert.Empty(t, rec.invalidated)
			assert.Equal(t, []string{"decode"}, stages)
		})
	}
}
