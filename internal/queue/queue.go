package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
)

const DefaultMaxRetries = 3

type Handler func(ctx context.Context, ev models.Event) error

// Queue fans domain events out to topic subscribers.
type Queue interface {
	Publish(ctx context.Context, ev models.Event) error
	Subscribe(topic string, handler Handler) error
	Close() error
}

// NewEvent wraps data in an Event stamped with the request id from ctx.
func NewEvent(ctx context.Context, topic string, data any) (models.Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		RequestID:  reqctx.RequestID(ctx),
		Data:       raw,
	}, nil
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt*500) * time.Millisecond
}
