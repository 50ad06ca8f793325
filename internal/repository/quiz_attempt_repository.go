package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/coursemart-backend/internal/model"
)

const attemptColumns = `id, quiz_id, student_id, score, max_score, passed, attempted_at, answers`

// QuizAttemptRepository stores graded attempts. Attempts are append-only.
type QuizAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewQuizAttemptRepository creates a new QuizAttemptRepository.
func NewQuizAttemptRepository(pool *pgxpool.Pool) *QuizAttemptRepository {
	return &QuizAttemptRepository{pool: pool}
}

// Create inserts a new attempt.
func (r *QuizAttemptRepository) Create(ctx context.Context, attempt *model.QuizAttempt) error {
	rec := attempt.Record()
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("encode attempt answers: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (`+attemptColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.QuizID, rec.StudentID, rec.Score, rec.MaxScore, rec.Passed, rec.AttemptedAt, answers,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// GetByID retrieves an attempt by its UUID.
func (r *QuizAttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	attempt, err := scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &model.NotFoundError{Resource: "attempt", ID: id.String()}
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// ListByQuizAndStudent returns a student's attempts for a quiz, newest first.
func (r *QuizAttemptRepository) ListByQuizAndStudent(ctx context.Context, quizID uuid.UUID, studentID int) ([]*model.QuizAttempt, error) {
	return r.list(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE quiz_id = $1 AND student_id = $2
		 ORDER BY attempted_at DESC`, quizID, studentID)
}

// ListByStudent returns every attempt of a student, newest first.
func (r *QuizAttemptRepository) ListByStudent(ctx context.Context, studentID int) ([]*model.QuizAttempt, error) {
	return r.list(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE student_id = $1
		 ORDER BY attempted_at DESC`, studentID)
}

// FindBest returns the highest-scoring attempt, the earliest one among ties.
// It returns nil without error when the student has no attempts.
func (r *QuizAttemptRepository) FindBest(ctx context.Context, quizID uuid.UUID, studentID int) (*model.QuizAttempt, error) {
	attempt, err := scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE quiz_id = $1 AND student_id = $2
		 ORDER BY score DESC, attempted_at ASC
		 LIMIT 1`, quizID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find best attempt: %w", err)
	}
	return attempt, nil
}

// CountByQuiz returns how many attempts were recorded for a quiz.
func (r *QuizAttemptRepository) CountByQuiz(ctx context.Context, quizID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = $1`, quizID,
	).Scan(&n)
	return n, err
}

// DeleteByQuiz removes every attempt of a quiz along with its result
// summaries and returns the number of attempts removed.
func (r *QuizAttemptRepository) DeleteByQuiz(ctx context.Context, quizID uuid.UUID) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := deleteAttemptsTx(ctx, tx, quizID)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit(ctx)
}

func deleteAttemptsTx(ctx context.Context, tx pgx.Tx, quizID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM quiz_attempts WHERE quiz_id = $1`, quizID)
	if err != nil {
		return 0, fmt.Errorf("delete attempts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM quiz_results WHERE quiz_id = $1`, quizID); err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *QuizAttemptRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*model.QuizAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (*model.QuizAttempt, error) {
	var rec model.AttemptRecord
	var answers []byte
	if err := row.Scan(&rec.ID, &rec.QuizID, &rec.StudentID, &rec.Score, &rec.MaxScore,
		&rec.Passed, &rec.AttemptedAt, &answers); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return nil, fmt.Errorf("decode attempt answers: %w", err)
	}
	return model.AttemptFromRecord(rec), nil
}
