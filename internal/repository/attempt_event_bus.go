package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// AttemptEventBus fans attempt events out to the results queue and to the
// quiz's live channel.
type AttemptEventBus struct {
	rdb *redis.Client
}

// NewAttemptEventBus creates a new AttemptEventBus.
func NewAttemptEventBus(rdb *redis.Client) *AttemptEventBus {
	return &AttemptEventBus{rdb: rdb}
}

// Publish enqueues event for the results worker and broadcasts it to live
// subscribers in one pipeline.
func (b *AttemptEventBus) Publish(ctx context.Context, event model.AttemptEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode attempt event: %w", err)
	}

	pipe := b.rdb.Pipeline()
	pipe.RPush(ctx, config.WorkerKey.QuizResultsQueue, raw)
	pipe.Publish(ctx, config.CacheKey.QuizLiveChannel(event.QuizID.String()), raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish attempt event: %w", err)
	}
	return nil
}

// Subscribe listens to a quiz's live channel. The caller must close the
// returned PubSub.
func (b *AttemptEventBus) Subscribe(ctx context.Context, quizID uuid.UUID) *redis.PubSub {
	return b.rdb.Subscribe(ctx, config.CacheKey.QuizLiveChannel(quizID.String()))
}

// DecodeAttemptEvent parses a message received from a live channel.
func DecodeAttemptEvent(msg *redis.Message) (model.AttemptEvent, error) {
	var event model.AttemptEvent
	err := json.Unmarshal([]byte(msg.Payload), &event)
	return event, err
}
