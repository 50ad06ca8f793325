package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizAttempt is the immutable, graded record of one submission.
type QuizAttempt struct {
	id          uuid.UUID
	quizID      uuid.UUID
	studentID   int
	score       int
	maxScore    int
	passed      bool
	attemptedAt time.Time
	answers     []StudentAnswer
}

// NewQuizAttempt validates the grade and stamps the attempt with attemptedAt.
func NewQuizAttempt(quizID uuid.UUID, studentID, score, maxScore int, passed bool, answers []StudentAnswer, attemptedAt time.Time) (*QuizAttempt, error) {
	if quizID == uuid.Nil {
		return nil, invalid("quiz_id", "is required")
	}
	if studentID <= 0 {
		return nil, invalid("student_id", "is required")
	}
	if score < 0 {
		return nil, invalid("score", "must not be negative")
	}
	if maxScore < 0 {
		return nil, invalid("max_score", "must not be negative")
	}
	if score > maxScore {
		return nil, invalid("score", "must not exceed max score")
	}
	if len(answers) == 0 {
		return nil, invalid("answers", "must contain at least one answer")
	}

	return &QuizAttempt{
		id:          uuid.New(),
		quizID:      quizID,
		studentID:   studentID,
		score:       score,
		maxScore:    maxScore,
		passed:      passed,
		attemptedAt: attemptedAt.UTC(),
		answers:     copyStudentAnswers(answers),
	}, nil
}

func (a *QuizAttempt) ID() uuid.UUID          { return a.id }
func (a *QuizAttempt) QuizID() uuid.UUID      { return a.quizID }
func (a *QuizAttempt) StudentID() int         { return a.studentID }
func (a *QuizAttempt) Score() int             { return a.score }
func (a *QuizAttempt) MaxScore() int          { return a.maxScore }
func (a *QuizAttempt) Passed() bool           { return a.passed }
func (a *QuizAttempt) AttemptedAt() time.Time { return a.attemptedAt }

// Answers returns a copy of the submitted answers.
func (a *QuizAttempt) Answers() []StudentAnswer { return copyStudentAnswers(a.answers) }

// ScorePercentage is the floored percentage of maxScore achieved.
func (a *QuizAttempt) ScorePercentage() int { return scorePercentage(a.score, a.maxScore) }

func (a *QuizAttempt) BelongsToStudent(studentID int) bool { return a.studentID == studentID }

func (a *QuizAttempt) IsForQuiz(quizID uuid.UUID) bool { return a.quizID == quizID }

// IsBetterThan reports whether a scored strictly higher than other.
func (a *QuizAttempt) IsBetterThan(other *QuizAttempt) bool {
	if other == nil {
		return true
	}
	return a.score > other.score
}

func copyStudentAnswers(in []StudentAnswer) []StudentAnswer {
	out := make([]StudentAnswer, len(in))
	for i, a := range in {
		idx := make([]int, len(a.SelectedIndexes))
		copy(idx, a.SelectedIndexes)
		out[i] = StudentAnswer{QuestionID: a.QuestionID, SelectedIndexes: idx}
	}
	return out
}

// AttemptRecord is the stored shape of an attempt.
type AttemptRecord struct {
	ID          uuid.UUID       `json:"id"`
	QuizID      uuid.UUID       `json:"quiz_id"`
	StudentID   int             `json:"student_id"`
	Score       int             `json:"score"`
	MaxScore    int             `json:"max_score"`
	Passed      bool            `json:"passed"`
	AttemptedAt time.Time       `json:"attempted_at"`
	Answers     []StudentAnswer `json:"answers"`
}

// Record snapshots a for persistence.
func (a *QuizAttempt) Record() AttemptRecord {
	return AttemptRecord{
		ID:          a.id,
		QuizID:      a.quizID,
		StudentID:   a.studentID,
		Score:       a.score,
		MaxScore:    a.maxScore,
		Passed:      a.passed,
		AttemptedAt: a.attemptedAt,
		Answers:     a.Answers(),
	}
}

// AttemptFromRecord rebuilds an attempt from storage without re-validating it.
func AttemptFromRecord(r AttemptRecord) *QuizAttempt {
	return &QuizAttempt{
		id:          r.ID,
		quizID:      r.QuizID,
		studentID:   r.StudentID,
		score:       r.Score,
		maxScore:    r.MaxScore,
		passed:      r.Passed,
		attemptedAt: r.AttemptedAt,
		answers:     copyStudentAnswers(r.Answers),
	}
}
