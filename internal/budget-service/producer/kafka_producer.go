package producer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	skafka "github.com/radieske/fantasy-betting-league/internal/shared/kafka"
	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

// KafkaPublisher publica apostas gravadas; a chave é o user_id para manter a ordem por usuário
type KafkaPublisher struct {
	Bets    *kafka.Writer
	Parlays *kafka.Writer
}

func NewKafkaPublisher(bets, parlays *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Bets: bets, Parlays: parlays}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return skafka.Publish(ctx, p.Bets, e.UserID, e)
}

func (p *KafkaPublisher) PublishParlayPlaced(ctx context.Context, e events.ParlayPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return skafka.Publish(ctx, p.Parlays, e.UserID, e)
}

func (p *KafkaPublisher) Close() error {
	err := p.Bets.Close()
	if perr := p.Parlays.Close(); err == nil {
		err = perr
	}
	return err
}
