package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// QuizStore persists quiz aggregates. Missing quizzes are reported as
// *model.NotFoundError and stale saves as *model.ConflictError.
type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	ListByInstructor(ctx context.Context, instructorID, limit, offset int) ([]*model.Quiz, int, error)
	ListByCourse(ctx context.Context, courseID int) ([]*model.Quiz, error)
	ListByLesson(ctx context.Context, lessonID int) ([]*model.Quiz, error)
	Save(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id uuid.UUID, purgeAttempts bool) error
}

// AttemptStore persists graded attempts.
type AttemptStore interface {
	Create(ctx context.Context, attempt *model.QuizAttempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error)
	ListByQuizAndStudent(ctx context.Context, quizID uuid.UUID, studentID int) ([]*model.QuizAttempt, error)
	ListByStudent(ctx context.Context, studentID int) ([]*model.QuizAttempt, error)
	// FindBest returns nil when the student has not attempted the quiz.
	FindBest(ctx context.Context, quizID uuid.UUID, studentID int) (*model.QuizAttempt, error)
	CountByQuiz(ctx context.Context, quizID uuid.UUID) (int, error)
	DeleteByQuiz(ctx context.Context, quizID uuid.UUID) (int64, error)
}

// ResultReader reads per-student best results.
type ResultReader interface {
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.QuizResult, error)
}

// PaperCache caches the student view of quizzes. Get returns nil on a miss.
type PaperCache interface {
	Get(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error)
	Set(ctx context.Context, paper *model.QuizPaper) error
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// AttemptPublisher announces stored attempts.
type AttemptPublisher interface {
	Publish(ctx context.Context, event model.AttemptEvent) error
}
