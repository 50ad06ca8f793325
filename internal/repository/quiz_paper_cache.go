package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// QuizPaperCache keeps the student view of a quiz in Redis.
type QuizPaperCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuizPaperCache creates a new QuizPaperCache. A zero ttl keeps entries
// until they are invalidated.
func NewQuizPaperCache(rdb *redis.Client, ttl time.Duration) *QuizPaperCache {
	return &QuizPaperCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached paper, or nil on a cache miss.
func (c *QuizPaperCache) Get(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.QuizPaperKey(quizID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quiz paper: %w", err)
	}

	var paper model.QuizPaper
	if err := json.Unmarshal(raw, &paper); err != nil {
		return nil, fmt.Errorf("decode quiz paper: %w", err)
	}
	return &paper, nil
}

// Set stores paper under its quiz id.
func (c *QuizPaperCache) Set(ctx context.Context, paper *model.QuizPaper) error {
	raw, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("encode quiz paper: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.QuizPaperKey(paper.QuizID.String()), raw, c.ttl).Err()
}

// Invalidate drops the cached paper of a quiz.
func (c *QuizPaperCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.rdb.Del(ctx, config.CacheKey.QuizPaperKey(quizID.String())).Err()
}
