package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// AttemptService serves quizzes to students and grades their submissions.
type AttemptService struct {
	quizzes   QuizStore
	attempts  AttemptStore
	cache     PaperCache
	publisher AttemptPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	quizzes QuizStore,
	attempts AttemptStore,
	cache PaperCache,
	publisher AttemptPublisher,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		quizzes:   quizzes,
		attempts:  attempts,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// GetPaper returns the student view of a quiz, served from Redis when cached.
// Students take quizzes without an ownership check.
func (s *AttemptService) GetPaper(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, error) {
	paper, err := s.cache.Get(ctx, quizID)
	if err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Quiz paper cache read failed")
	}
	if paper != nil {
		return paper, nil
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	built := model.NewQuizPaper(quiz)
	if err := s.cache.Set(ctx, &built); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Quiz paper cache write failed")
	}
	return &built, nil
}

// Submit grades a submission against the stored quiz and records the attempt.
// Selected indexes are not bounds-checked: an index past the end of a
// question's answers never matches and the question scores zero.
func (s *AttemptService) Submit(ctx context.Context, studentID int, quizID uuid.UUID, submitted []model.SubmittedAnswer) (*model.QuizAttempt, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	answers, err := toStudentAnswers(submitted)
	if err != nil {
		return nil, err
	}

	grade := quiz.Grade(answers)

	attempt, err := model.NewQuizAttempt(quizID, studentID, grade.Score, grade.MaxScore, grade.Passed, answers, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Str("attempt_id", attempt.ID().String()).
		Int("student_id", studentID).
		Int("score", grade.Score).
		Int("max_score", grade.MaxScore).
		Bool("passed", grade.Passed).
		Msg("Quiz attempt graded")

	// Best effort: the attempt is already stored.
	if err := s.publisher.Publish(ctx, model.NewAttemptEvent(attempt)); err != nil {
		s.log.Error().Err(err).Str("attempt_id", attempt.ID().String()).Msg("Failed to publish attempt event")
	}

	return attempt, nil
}

// ListAttempts returns a student's attempts for a quiz, newest first.
func (s *AttemptService) ListAttempts(ctx context.Context, studentID int, quizID uuid.UUID) ([]*model.QuizAttempt, error) {
	return s.attempts.ListByQuizAndStudent(ctx, quizID, studentID)
}

// ListStudentAttempts returns every attempt of a student, newest first.
func (s *AttemptService) ListStudentAttempts(ctx context.Context, studentID int) ([]*model.QuizAttempt, error) {
	return s.attempts.ListByStudent(ctx, studentID)
}

// BestAttempt returns the student's highest-scoring attempt, or nil if the
// student has none.
func (s *AttemptService) BestAttempt(ctx context.Context, studentID int, quizID uuid.UUID) (*model.QuizAttempt, error) {
	return s.attempts.FindBest(ctx, quizID, studentID)
}

// GetAttempt returns one of the student's own attempts for a quiz.
func (s *AttemptService) GetAttempt(ctx context.Context, studentID int, quizID, attemptID uuid.UUID) (*model.QuizAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsForQuiz(quizID) {
		return nil, &model.NotFoundError{Resource: "attempt", ID: attemptID.String()}
	}
	if !attempt.BelongsToStudent(studentID) {
		return nil, &model.AuthorizationError{Resource: "attempt " + attemptID.String(), ActorID: studentID}
	}
	return attempt, nil
}

func toStudentAnswers(submitted []model.SubmittedAnswer) ([]model.StudentAnswer, error) {
	seen := make(map[uuid.UUID]struct{}, len(submitted))
	answers := make([]model.StudentAnswer, 0, len(submitted))
	for _, raw := range submitted {
		if _, dup := seen[raw.QuestionID]; dup {
			return nil, &model.ValidationError{Field: "answers.question_id", Reason: "question answered more than once"}
		}
		seen[raw.QuestionID] = struct{}{}

		a, err := model.NewStudentAnswer(raw.QuestionID, raw.SelectedIndexes)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}
