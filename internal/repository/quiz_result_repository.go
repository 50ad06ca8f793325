package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// QuizResultRepository maintains per-student best results, a projection of
// the attempts table written by the results worker.
type QuizResultRepository struct {
	pool *pgxpool.Pool
}

// NewQuizResultRepository creates a new QuizResultRepository.
func NewQuizResultRepository(pool *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{pool: pool}
}

// ListByQuiz returns every student's best result for a quiz, highest first.
func (r *QuizResultRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT quiz_id, student_id, best_score, max_score, passed, attempt_count, last_attempt_at
		 FROM quiz_results WHERE quiz_id = $1
		 ORDER BY best_score DESC, student_id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		var res model.QuizResult
		if err := rows.Scan(&res.QuizID, &res.StudentID, &res.BestScore, &res.MaxScore,
			&res.Passed, &res.AttemptCount, &res.LastAttemptAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// MergeBatch folds a batch of results into the table with one UNNEST upsert.
// Each (quiz, student) pair may appear at most once in the batch. The stored
// best score only changes when the incoming one is strictly higher.
func (r *QuizResultRepository) MergeBatch(ctx context.Context, batch []model.QuizResult) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	quizIDs := make([]uuid.UUID, 0, n)
	students := make([]int, 0, n)
	scores := make([]int, 0, n)
	maxScores := make([]int, 0, n)
	passed := make([]bool, 0, n)
	counts := make([]int, 0, n)
	lastAts := make([]time.Time, 0, n)
	for _, res := range batch {
		quizIDs = append(quizIDs, res.QuizID)
		students = append(students, res.StudentID)
		scores = append(scores, res.BestScore)
		maxScores = append(maxScores, res.MaxScore)
		passed = append(passed, res.Passed)
		counts = append(counts, res.AttemptCount)
		lastAts = append(lastAts, res.LastAttemptAt)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_results AS r
			(quiz_id, student_id, best_score, max_score, passed, attempt_count, last_attempt_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::int[],
			$4::int[],
			$5::bool[],
			$6::int[],
			$7::timestamptz[]
		)
		ON CONFLICT (quiz_id, student_id) DO UPDATE SET
			best_score = CASE WHEN EXCLUDED.best_score > r.best_score THEN EXCLUDED.best_score ELSE r.best_score END,
			max_score  = CASE WHEN EXCLUDED.best_score > r.best_score THEN EXCLUDED.max_score ELSE r.max_score END,
			passed     = CASE WHEN EXCLUDED.best_score > r.best_score THEN EXCLUDED.passed ELSE r.passed END,
			attempt_count   = r.attempt_count + EXCLUDED.attempt_count,
			last_attempt_at = GREATEST(r.last_attempt_at, EXCLUDED.last_attempt_at)`,
		quizIDs, students, scores, maxScores, passed, counts, lastAts)
	if err != nil {
		return fmt.Errorf("merge results: %w", err)
	}
	return nil
}

// Merge folds a single result into the table.
func (r *QuizResultRepository) Merge(ctx context.Context, res model.QuizResult) error {
	return r.MergeBatch(ctx, []model.QuizResult{res})
}
