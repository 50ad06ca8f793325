package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/coursemart-backend/internal/model"
)

const quizColumns = `id, title, passing_score, instructor_id, course_id, section_id, lesson_id,
		        version, created_at, updated_at`

// QuizRepository stores quizzes together with their questions. A quiz and its
// questions are always written in one transaction.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// Create inserts a new quiz and its questions.
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	rec := quiz.Record()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int
	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (id, title, passing_score, instructor_id, course_id, section_id, lesson_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING version, created_at, updated_at`,
		rec.ID, rec.Title, rec.PassingScore, rec.InstructorID,
		rec.Assignment.CourseID, rec.Assignment.SectionID, rec.Assignment.LessonID,
	).Scan(&version, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	if err := insertQuestions(ctx, tx, rec.ID, rec.Questions); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit quiz: %w", err)
	}

	quiz.MarkPersisted(version, createdAt, updatedAt)
	return nil
}

// GetByID loads a quiz with its questions in presentation order.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	rec, err := scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &model.NotFoundError{Resource: "quiz", ID: id.String()}
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	questions, err := r.loadQuestions(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	rec.Questions = questions[id]

	return model.QuizFromRecord(rec), nil
}

// ListByInstructor returns one page of an instructor's quizzes, newest first,
// plus the total count.
func (r *QuizRepository) ListByInstructor(ctx context.Context, instructorID, limit, offset int) ([]*model.Quiz, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE instructor_id = $1`, instructorID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}

	quizzes, err := r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE instructor_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		instructorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

// ListByCourse returns the quizzes attached directly to a course.
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID int) ([]*model.Quiz, error) {
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE course_id = $1 ORDER BY created_at`, courseID)
}

// ListByLesson returns the quizzes attached to a lesson.
func (r *QuizRepository) ListByLesson(ctx context.Context, lessonID int) ([]*model.Quiz, error) {
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE lesson_id = $1 ORDER BY created_at`, lessonID)
}

// Save writes the quiz details and replaces its questions. The write only
// succeeds if the stored version still matches the version the quiz was
// loaded with; otherwise a ConflictError is returned.
func (r *QuizRepository) Save(ctx context.Context, quiz *model.Quiz) error {
	rec := quiz.Record()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int
	var updatedAt time.Time
	err = tx.QueryRow(ctx,
		`UPDATE quizzes
		 SET title = $2, passing_score = $3, course_id = $4, section_id = $5, lesson_id = $6,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $7
		 RETURNING version, updated_at`,
		rec.ID, rec.Title, rec.PassingScore,
		rec.Assignment.CourseID, rec.Assignment.SectionID, rec.Assignment.LessonID,
		rec.Version,
	).Scan(&version, &updatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update quiz: %w", err)
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, rec.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check quiz: %w", err)
		}
		if !exists {
			return &model.NotFoundError{Resource: "quiz", ID: rec.ID.String()}
		}
		return &model.ConflictError{Resource: "quiz", ID: rec.ID.String()}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if err := insertQuestions(ctx, tx, rec.ID, rec.Questions); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit quiz: %w", err)
	}

	quiz.MarkPersisted(version, rec.CreatedAt, updatedAt)
	return nil
}

// Delete removes a quiz. Questions go with it through the foreign key. When
// purgeAttempts is set, the quiz's attempts and result summaries are removed
// in the same transaction.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID, purgeAttempts bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Resource: "quiz", ID: id.String()}
	}

	if purgeAttempts {
		if _, err := deleteAttemptsTx(ctx, tx, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *QuizRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Quiz, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var records []model.QuizRecord
	var ids []uuid.UUID
	for rows.Next() {
		rec, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		records = append(records, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	questions, err := r.loadQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	quizzes := make([]*model.Quiz, 0, len(records))
	for _, rec := range records {
		rec.Questions = questions[rec.ID]
		quizzes = append(quizzes, model.QuizFromRecord(rec))
	}
	return quizzes, nil
}

func (r *QuizRepository) loadQuestions(ctx context.Context, quizIDs []uuid.UUID) (map[uuid.UUID][]model.QuestionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, points, order_index, answers
		 FROM questions WHERE quiz_id = ANY($1::uuid[])
		 ORDER BY quiz_id, position`, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	byQuiz := make(map[uuid.UUID][]model.QuestionRecord, len(quizIDs))
	for rows.Next() {
		var q model.QuestionRecord
		var answers []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &q.Points, &q.OrderIndex, &answers); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(answers, &q.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of question %s: %w", q.ID, err)
		}
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], q)
	}
	return byQuiz, rows.Err()
}

func insertQuestions(ctx context.Context, tx pgx.Tx, quizID uuid.UUID, questions []model.QuestionRecord) error {
	if len(questions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for position, q := range questions {
		answers, err := json.Marshal(q.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		batch.Queue(
			`INSERT INTO questions (id, quiz_id, position, question_text, question_type, points, order_index, answers)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, quizID, position, q.Text, string(q.Type), q.Points, q.OrderIndex, answers,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range questions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return br.Close()
}

func scanQuiz(row pgx.Row) (model.QuizRecord, error) {
	var rec model.QuizRecord
	err := row.Scan(&rec.ID, &rec.Title, &rec.PassingScore, &rec.InstructorID,
		&rec.Assignment.CourseID, &rec.Assignment.SectionID, &rec.Assignment.LessonID,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
