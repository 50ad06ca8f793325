package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerView is an answer as shown to the quiz owner.
type AnswerView struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionView is a question as shown to the quiz owner.
type QuestionView struct {
	ID         uuid.UUID    `json:"id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Points     int          `json:"points"`
	OrderIndex int          `json:"order_index"`
	Answers    []AnswerView `json:"answers"`
}

// QuizView is the instructor's full view of a quiz, answer key included.
type QuizView struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	PassingScore   int            `json:"passing_score"`
	InstructorID   int            `json:"instructor_id"`
	Assignment     Assignment     `json:"assignment"`
	Version        int            `json:"version"`
	QuestionsCount int            `json:"questions_count"`
	MaxScore       int            `json:"max_score"`
	Questions      []QuestionView `json:"questions"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewQuestionView builds the owner view of a single question.
func NewQuestionView(question *Question) QuestionView {
	answers := make([]AnswerView, 0, len(question.answers))
	for i, a := range question.answers {
		answers = append(answers, AnswerView{Index: i, Text: a.Text, Correct: a.Correct})
	}
	return QuestionView{
		ID:         question.id,
		Text:       question.text,
		Type:       question.qtype,
		Points:     question.points,
		OrderIndex: question.orderIndex,
		Answers:    answers,
	}
}

// NewQuizView builds the instructor view of q.
func NewQuizView(q *Quiz) QuizView {
	questions := make([]QuestionView, 0, len(q.questions))
	for _, question := range q.questions {
		questions = append(questions, NewQuestionView(question))
	}
	return QuizView{
		ID:             q.id,
		Title:          q.title,
		PassingScore:   q.passingScore,
		InstructorID:   q.instructorID,
		Assignment:     q.assignment,
		Version:        q.version,
		QuestionsCount: len(q.questions),
		MaxScore:       q.MaxScore(),
		Questions:      questions,
		CreatedAt:      q.createdAt,
		UpdatedAt:      q.updatedAt,
	}
}

// QuizSummary is the light listing shape.
type QuizSummary struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	PassingScore   int        `json:"passing_score"`
	InstructorID   int        `json:"instructor_id"`
	Assignment     Assignment `json:"assignment"`
	QuestionsCount int        `json:"questions_count"`
	MaxScore       int        `json:"max_score"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewQuizSummary builds the listing shape of q.
func NewQuizSummary(q *Quiz) QuizSummary {
	return QuizSummary{
		ID:             q.id,
		Title:          q.title,
		PassingScore:   q.passingScore,
		InstructorID:   q.instructorID,
		Assignment:     q.assignment,
		QuestionsCount: len(q.questions),
		MaxScore:       q.MaxScore(),
		UpdatedAt:      q.updatedAt,
	}
}

// QuizPaper is the cached payload sent to students (no correct flags).
type QuizPaper struct {
	QuizID       uuid.UUID            `json:"quiz_id"`
	Title        string               `json:"title"`
	PassingScore int                  `json:"passing_score"`
	MaxScore     int                  `json:"max_score"`
	Questions    []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question without its answer key.
type QuestionForStudent struct {
	ID         uuid.UUID      `json:"id"`
	Text       string         `json:"text"`
	Type       QuestionType   `json:"type"`
	Points     int            `json:"points"`
	OrderIndex int            `json:"order_index"`
	Options    []AnswerOption `json:"options"`
}

// AnswerOption is an answer stripped of its correctness flag. Index is the
// value a student submits to select it.
type AnswerOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// NewQuizPaper builds the student view of q.
func NewQuizPaper(q *Quiz) QuizPaper {
	questions := make([]QuestionForStudent, 0, len(q.questions))
	for _, question := range q.questions {
		options := make([]AnswerOption, 0, len(question.answers))
		for i, a := range question.answers {
			options = append(options, AnswerOption{Index: i, Text: a.Text})
		}
		questions = append(questions, QuestionForStudent{
			ID:         question.id,
			Text:       question.text,
			Type:       question.qtype,
			Points:     question.points,
			OrderIndex: question.orderIndex,
			Options:    options,
		})
	}
	return QuizPaper{
		QuizID:       q.id,
		Title:        q.title,
		PassingScore: q.passingScore,
		MaxScore:     q.MaxScore(),
		Questions:    questions,
	}
}

// AttemptView is the response shape of a graded attempt.
type AttemptView struct {
	ID          uuid.UUID       `json:"id"`
	QuizID      uuid.UUID       `json:"quiz_id"`
	StudentID   int             `json:"student_id"`
	Score       int             `json:"score"`
	MaxScore    int             `json:"max_score"`
	Percentage  int             `json:"percentage"`
	Passed      bool            `json:"passed"`
	AttemptedAt time.Time       `json:"attempted_at"`
	Answers     []StudentAnswer `json:"answers"`
}

// NewAttemptView builds the response shape of a.
func NewAttemptView(a *QuizAttempt) AttemptView {
	return AttemptView{
		ID:          a.id,
		QuizID:      a.quizID,
		StudentID:   a.studentID,
		Score:       a.score,
		MaxScore:    a.maxScore,
		Percentage:  a.ScorePercentage(),
		Passed:      a.passed,
		AttemptedAt: a.attemptedAt,
		Answers:     a.Answers(),
	}
}

// QuizResult is a student's best outcome on a quiz, maintained from attempt events.
type QuizResult struct {
	QuizID        uuid.UUID `json:"quiz_id"`
	StudentID     int       `json:"student_id"`
	BestScore     int       `json:"best_score"`
	MaxScore      int       `json:"max_score"`
	Passed        bool      `json:"passed"`
	AttemptCount  int       `json:"attempt_count"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// AttemptEvent is published after an attempt is stored.
type AttemptEvent struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	QuizID      uuid.UUID `json:"quiz_id"`
	StudentID   int       `json:"student_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Passed      bool      `json:"passed"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// NewAttemptEvent describes a freshly stored attempt.
func NewAttemptEvent(a *QuizAttempt) AttemptEvent {
	return AttemptEvent{
		AttemptID:   a.id,
		QuizID:      a.quizID,
		StudentID:   a.studentID,
		Score:       a.score,
		MaxScore:    a.maxScore,
		Passed:      a.passed,
		AttemptedAt: a.attemptedAt,
	}
}
