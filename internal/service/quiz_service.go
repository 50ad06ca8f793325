package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/model"
	"github.com/stemsi/coursemart-backend/internal/response"
)

// QuizService handles quiz authoring. Every mutation loads the quiz, checks
// that the acting instructor owns it, and saves the whole aggregate back.
type QuizService struct {
	quizzes         QuizStore
	attempts        AttemptStore
	results         ResultReader
	cache           PaperCache
	cascadeAttempts bool
	log             zerolog.Logger
}

// NewQuizService creates a new QuizService. When cascadeAttempts is set,
// deleting a quiz also deletes its recorded attempts.
func NewQuizService(
	quizzes QuizStore,
	attempts AttemptStore,
	results ResultReader,
	cache PaperCache,
	cascadeAttempts bool,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizzes:         quizzes,
		attempts:        attempts,
		results:         results,
		cache:           cache,
		cascadeAttempts: cascadeAttempts,
		log:             log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create validates and stores a new quiz owned by instructorID.
func (s *QuizService) Create(ctx context.Context, instructorID int, req model.CreateQuizRequest) (*model.Quiz, error) {
	passingScore := 0
	if req.PassingScore != nil {
		passingScore = *req.PassingScore
	}

	quiz, err := model.NewQuiz(req.Title, passingScore, instructorID, model.Assignment{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		LessonID:  req.LessonID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.log.Info().Str("quiz_id", quiz.ID().String()).Int("instructor_id", instructorID).Msg("Quiz created")
	return quiz, nil
}

// GetOwned loads a quiz for its owner.
func (s *QuizService) GetOwned(ctx context.Context, instructorID int, quizID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := quiz.EnsureOwnedBy(instructorID); err != nil {
		return nil, err
	}
	return quiz, nil
}

// ListByInstructor returns a page of the instructor's quizzes.
func (s *QuizService) ListByInstructor(ctx context.Context, instructorID, page, perPage int) ([]*model.Quiz, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	quizzes, total, err := s.quizzes.ListByInstructor(ctx, instructorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	return quizzes, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// ListByCourse returns the quizzes attached to a course.
func (s *QuizService) ListByCourse(ctx context.Context, courseID int) ([]*model.Quiz, error) {
	return s.quizzes.ListByCourse(ctx, courseID)
}

// ListByLesson returns the quizzes attached to a lesson.
func (s *QuizService) ListByLesson(ctx context.Context, lessonID int) ([]*model.Quiz, error) {
	return s.quizzes.ListByLesson(ctx, lessonID)
}

// Update changes the title and passing score.
func (s *QuizService) Update(ctx context.Context, instructorID int, quizID uuid.UUID, req model.UpdateQuizRequest) (*model.Quiz, error) {
	return s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		passingScore := 0
		if req.PassingScore != nil {
			passingScore = *req.PassingScore
		}
		return quiz.UpdateDetails(req.Title, passingScore)
	})
}

// Assign attaches the quiz to the single target named in req, or detaches it
// when req names none.
func (s *QuizService) Assign(ctx context.Context, instructorID int, quizID uuid.UUID, req model.AssignQuizRequest) (*model.Quiz, error) {
	return s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		target := model.Assignment{CourseID: req.CourseID, SectionID: req.SectionID, LessonID: req.LessonID}
		switch {
		case target.IsZero():
			quiz.Unassign()
			return nil
		case req.CourseID != nil && req.SectionID == nil && req.LessonID == nil:
			return quiz.AssignToCourse(*req.CourseID)
		case req.SectionID != nil && req.CourseID == nil && req.LessonID == nil:
			return quiz.AssignToSection(*req.SectionID)
		case req.LessonID != nil && req.CourseID == nil && req.SectionID == nil:
			return quiz.AssignToLesson(*req.LessonID)
		default:
			return &model.ValidationError{Field: "assignment", Reason: "a quiz may belong to only one of course, section or lesson"}
		}
	})
}

// Delete removes the quiz and its questions. Attempts are removed as well
// when the service was built with cascadeAttempts.
func (s *QuizService) Delete(ctx context.Context, instructorID int, quizID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, instructorID, quizID); err != nil {
		return err
	}

	if err := s.quizzes.Delete(ctx, quizID, s.cascadeAttempts); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)

	s.log.Info().
		Str("quiz_id", quizID.String()).
		Bool("attempts_deleted", s.cascadeAttempts).
		Msg("Quiz deleted")
	return nil
}

// AddQuestion builds a question with its answers and appends it to the quiz.
func (s *QuizService) AddQuestion(ctx context.Context, instructorID int, quizID uuid.UUID, req model.AddQuestionRequest) (*model.Question, error) {
	var added *model.Question
	_, err := s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		question, err := model.NewQuestion(req.Text, model.QuestionType(req.Type), req.OrderIndex)
		if err != nil {
			return err
		}
		if req.Points != 0 {
			if err := question.UpdatePoints(req.Points); err != nil {
				return err
			}
		}
		answers, err := buildAnswers(req.Answers)
		if err != nil {
			return err
		}
		if err := question.SetAnswers(answers); err != nil {
			return err
		}
		if err := quiz.AddQuestion(question); err != nil {
			return err
		}
		added = question
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateQuestion replaces a question's text, order, points and answers.
func (s *QuizService) UpdateQuestion(ctx context.Context, instructorID int, quizID, questionID uuid.UUID, req model.UpdateQuestionRequest) (*model.Question, error) {
	var updated *model.Question
	_, err := s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		question, err := quiz.FindQuestion(questionID)
		if err != nil {
			return err
		}
		if err := question.UpdateText(req.Text); err != nil {
			return err
		}
		if err := question.UpdateOrderIndex(req.OrderIndex); err != nil {
			return err
		}
		if req.Points != 0 {
			if err := question.UpdatePoints(req.Points); err != nil {
				return err
			}
		}
		answers, err := buildAnswers(req.Answers)
		if err != nil {
			return err
		}
		if err := question.SetAnswers(answers); err != nil {
			return err
		}
		updated = question
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteQuestion removes a question from the quiz.
func (s *QuizService) DeleteQuestion(ctx context.Context, instructorID int, quizID, questionID uuid.UUID) error {
	_, err := s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		return quiz.RemoveQuestion(questionID)
	})
	return err
}

// ReorderQuestions sets the presentation order of the quiz's questions.
func (s *QuizService) ReorderQuestions(ctx context.Context, instructorID int, quizID uuid.UUID, req model.ReorderQuestionsRequest) (*model.Quiz, error) {
	return s.mutate(ctx, instructorID, quizID, func(quiz *model.Quiz) error {
		return quiz.ReorderQuestions(req.QuestionIDs)
	})
}

// QuizResults is the owner's overview of how students did on a quiz.
type QuizResults struct {
	TotalAttempts int                `json:"total_attempts"`
	Students      []model.QuizResult `json:"students"`
}

// Results returns every student's best result for a quiz the instructor owns.
func (s *QuizService) Results(ctx context.Context, instructorID int, quizID uuid.UUID) (*QuizResults, error) {
	if _, err := s.GetOwned(ctx, instructorID, quizID); err != nil {
		return nil, err
	}

	total, err := s.attempts.CountByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	students, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.QuizResult{}
	}
	return &QuizResults{TotalAttempts: total, Students: students}, nil
}

func (s *QuizService) mutate(ctx context.Context, instructorID int, quizID uuid.UUID, apply func(*model.Quiz) error) (*model.Quiz, error) {
	quiz, err := s.GetOwned(ctx, instructorID, quizID)
	if err != nil {
		return nil, err
	}
	if err := apply(quiz); err != nil {
		return nil, err
	}
	if err := s.quizzes.Save(ctx, quiz); err != nil {
		return nil, err
	}
	s.invalidate(ctx, quizID)
	return quiz, nil
}

// invalidate drops the cached student paper. Failures are only logged.
func (s *QuizService) invalidate(ctx context.Context, quizID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Failed to invalidate quiz paper cache")
	}
}

func buildAnswers(reqs []model.AnswerRequest) ([]model.Answer, error) {
	answers := make([]model.Answer, 0, len(reqs))
	for _, r := range reqs {
		a, err := model.NewAnswer(r.Text, r.Correct)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}
