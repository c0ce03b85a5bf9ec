package lock

import (
	"context"

	"github.com/segmentio/kafka-go"

	skafka "github.com/radieske/fantasy-betting-league/internal/shared/kafka"
	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func (p *KafkaPublisher) PublishOptionsLocked(ctx context.Context, e events.OptionsLocked) error {
	return skafka.Publish(ctx, p.Writer, e.GameID, e)
}
