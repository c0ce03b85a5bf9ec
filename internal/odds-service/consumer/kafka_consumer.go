package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

type Invalidator interface {
	Invalidate(ctx context.Context, gameID string) error
}

type Broadcaster interface {
	Publish(ctx context.Context, msg events.Broadcast) error
}

// Processor consome odds_moved: derruba o cache do jogo e avisa os clientes WebSocket
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Cache       Invalidator
	Broadcaster Broadcaster

	OnConsumed func()       // métricas (counter++)
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		if err := p.Handle(ctx, m.Value); err != nil {
			p.Log.Warn("odds_moved not handled", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

// Handle processa uma mensagem. Mensagens inválidas são descartadas.
func (p *Processor) Handle(ctx context.Context, value []byte) error {
	var ev events.OddsMoved
	if err := json.Unmarshal(value, &ev); err != nil {
		p.fail("decode")
		return fmt.Errorf("decode odds_moved: %w", err)
	}
	if ev.GameID == "" || ev.NewOptionID == "" {
		p.fail("decode")
		return fmt.Errorf("odds_moved without game or option id")
	}
	if ev.AmericanOdds == 0 {
		p.fail("decode")
		return odds.ErrZeroAmericanOdds
	}

	// sem cache o próximo GET lê do banco; segue para o broadcast mesmo assim
	if err := p.Cache.Invalidate(ctx, ev.GameID); err != nil {
		p.Log.Warn("cache invalidate failed", zap.String("game_id", ev.GameID), zap.Error(err))
		p.fail("cache")
	}

	if err := p.Broadcaster.Publish(ctx, events.Broadcast{Type: "odds_moved", GameID: ev.GameID, Data: ev}); err != nil {
		p.fail("broadcast")
		return fmt.Errorf("broadcast: %w", err)
	}
	return nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
