package worker

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/model"
)

const (
	ResultsBatchSize    = 100
	ResultsBatchTimeout = 2 * time.Second
	ResultsPollTimeout  = 1 * time.Second
)

// ResultMerger persists per-student best results.
type ResultMerger interface {
	MergeBatch(ctx context.Context, batch []model.QuizResult) error
}

// ResultsWorker drains attempt events from Redis and folds them into the
// per-student results table that instructors read.
type ResultsWorker struct {
	rdb          *redis.Client
	results      ResultMerger
	batchSize    int
	batchTimeout time.Duration
	log          zerolog.Logger
}

// NewResultsWorker creates a new ResultsWorker. Zero batch settings fall back
// to the package defaults.
func NewResultsWorker(rdb *redis.Client, results ResultMerger, batchSize int, batchTimeout time.Duration, log zerolog.Logger) *ResultsWorker {
	if batchSize <= 0 {
		batchSize = ResultsBatchSize
	}
	if batchTimeout <= 0 {
		batchTimeout = ResultsBatchTimeout
	}
	return &ResultsWorker{
		rdb:          rdb,
		results:      results,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		log:          log.With().Str("component", "results_worker").Logger(),
	}
}

// ─── Worker loop with batching ──────────────────────────────────────

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ResultsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultsWorker started")

	batch := make([]model.AttemptEvent, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultsPollTimeout, config.WorkerKey.QuizResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(ResultsPollTimeout)
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var event model.AttemptEvent
			if err := json.Unmarshal([]byte(item[1]), &event); err != nil {
				w.log.Error().Err(err).Msg("Invalid attempt event payload")
				continue
			}
			batch = append(batch, event)
		}
	}
}

// ─── Batch merge with fallback ──────────────────────────────────────

func (w *ResultsWorker) flushSafe(ctx context.Context, batch []model.AttemptEvent) {
	if len(batch) == 0 {
		return
	}

	results := AggregateResults(batch)
	err := w.results.MergeBatch(ctx, results)
	if err == nil {
		w.log.Debug().Int("events", len(batch)).Int("results", len(results)).Msg("Results merged")
		return
	}

	w.log.Warn().Err(err).Msg("Bulk results merge failed, using fallback")
	for _, res := range results {
		if err := w.results.MergeBatch(ctx, []model.QuizResult{res}); err != nil {
			w.log.Error().Err(err).
				Str("quiz_id", res.QuizID.String()).
				Int("student_id", res.StudentID).
				Msg("Result merge failed, requeueing")
			w.requeue(ctx, batch, res.QuizID, res.StudentID)
		}
	}
}

func (w *ResultsWorker) requeue(ctx context.Context, batch []model.AttemptEvent, quizID uuid.UUID, studentID int) {
	pipe := w.rdb.Pipeline()
	for _, e := range batch {
		if e.QuizID != quizID || e.StudentID != studentID {
			continue
		}
		raw, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.QuizResultsQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("Requeue failed, events dropped")
	}
}

// AggregateResults collapses events into one result per (quiz, student).
// The best score is the highest; on ties the earliest attempt wins. Output
// is ordered by quiz then student.
func AggregateResults(events []model.AttemptEvent) []model.QuizResult {
	type key struct {
		quizID    uuid.UUID
		studentID int
	}
	type acc struct {
		res    model.QuizResult
		bestAt time.Time
	}

	byKey := make(map[key]*acc, len(events))
	for _, e := range events {
		k := key{quizID: e.QuizID, studentID: e.StudentID}
		a, ok := byKey[k]
		if !ok {
			byKey[k] = &acc{
				res: model.QuizResult{
					QuizID:        e.QuizID,
					StudentID:     e.StudentID,
					BestScore:     e.Score,
					MaxScore:      e.MaxScore,
					Passed:        e.Passed,
					AttemptCount:  1,
					LastAttemptAt: e.AttemptedAt,
				},
				bestAt: e.AttemptedAt,
			}
			continue
		}

		a.res.AttemptCount++
		if e.AttemptedAt.After(a.res.LastAttemptAt) {
			a.res.LastAttemptAt = e.AttemptedAt
		}
		if e.Score > a.res.BestScore || (e.Score == a.res.BestScore && e.AttemptedAt.Before(a.bestAt)) {
			a.res.BestScore, a.res.MaxScore, a.res.Passed = e.Score, e.MaxScore, e.Passed
			a.bestAt = e.AttemptedAt
		}
	}

	out := make([]model.QuizResult, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, a.res)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := compareUUID(out[i].QuizID, out[j].QuizID); c != 0 {
			return c < 0
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

func compareUUID(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
