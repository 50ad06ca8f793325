package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func someAnswers(t *testing.T) []StudentAnswer {
	t.Helper()
	a, err := NewStudentAnswer(uuid.New(), []int{0})
	if err != nil {
		t.Fatalf("student answer: %v", err)
	}
	return []StudentAnswer{a}
}

func TestNewQuizAttemptValidation(t *testing.T) {
	quizID := uuid.New()
	now := time.Now()
	ok := someAnswers(t)

	cases := []struct {
		name      string
		quizID    uuid.UUID
		studentID int
		score     int
		maxScore  int
		answers   []StudentAnswer
	}{
		{"missing quiz", uuid.Nil, 1, 0, 1, ok},
		{"missing student", quizID, 0, 0, 1, ok},
		{"negative score", quizID, 1, -1, 1, ok},
		{"negative max", quizID, 1, 0, -1, ok},
		{"score above max", quizID, 1, 3, 2, ok},
		{"no answers", quizID, 1, 0, 1, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuizAttempt(tc.quizID, tc.studentID, tc.score, tc.maxScore, false, tc.answers, now)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestQuizAttemptQueries(t *testing.T) {
	quizID := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	attempt, err := NewQuizAttempt(quizID, 42, 2, 3, false, someAnswers(t), at)
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	if attempt.ScorePercentage() != 66 {
		t.Fatalf("expected 66%%, got %d", attempt.ScorePercentage())
	}
	if !attempt.AttemptedAt().Equal(at) || attempt.AttemptedAt().Location() != time.UTC {
		t.Fatalf("attempted_at not stamped in UTC: %v", attempt.AttemptedAt())
	}
	if !attempt.BelongsToStudent(42) || attempt.BelongsToStudent(43) {
		t.Fatal("BelongsToStudent mismatch")
	}
	if !attempt.IsForQuiz(quizID) || attempt.IsForQuiz(uuid.New()) {
		t.Fatal("IsForQuiz mismatch")
	}

	empty, err := NewQuizAttempt(quizID, 42, 0, 0, false, someAnswers(t), at)
	if err != nil {
		t.Fatalf("zero max attempt: %v", err)
	}
	if empty.ScorePercentage() != 0 {
		t.Fatalf("expected 0%% for zero max score, got %d", empty.ScorePercentage())
	}
}

func TestIsBetterThan(t *testing.T) {
	quizID := uuid.New()
	now := time.Now()
	low, _ := NewQuizAttempt(quizID, 1, 1, 5, false, someAnswers(t), now)
	high, _ := NewQuizAttempt(quizID, 1, 4, 5, true, someAnswers(t), now)
	same, _ := NewQuizAttempt(quizID, 1, 4, 5, true, someAnswers(t), now)

	if !low.IsBetterThan(nil) {
		t.Fatal("any attempt beats no attempt")
	}
	if !high.IsBetterThan(low) || low.IsBetterThan(high) {
		t.Fatal("score ordering wrong")
	}
	if high.IsBetterThan(same) {
		t.Fatal("equal scores are not better")
	}
}

func TestQuizAttemptIsImmutable(t *testing.T) {
	answers := someAnswers(t)
	attempt, err := NewQuizAttempt(uuid.New(), 1, 0, 1, false, answers, time.Now())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	answers[0].SelectedIndexes[0] = 5
	got := attempt.Answers()
	if got[0].SelectedIndexes[0] != 0 {
		t.Fatal("attempt shares the caller's answer slice")
	}
	got[0].SelectedIndexes[0] = 9
	if attempt.Answers()[0].SelectedIndexes[0] != 0 {
		t.Fatal("attempt exposes its internal answer slice")
	}
}

func TestNewStudentAnswer(t *testing.T) {
	if _, err := NewStudentAnswer(uuid.Nil, []int{0}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected missing question rejection, got %v", err)
	}
	if _, err := NewStudentAnswer(uuid.New(), []int{-1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected negative index rejection, got %v", err)
	}
	if _, err := NewStudentAnswer(uuid.New(), []int{1, 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	a, err := NewStudentAnswer(uuid.New(), nil)
	if err != nil {
		t.Fatalf("empty selection rejected: %v", err)
	}
	if len(a.Selection()) != 0 {
		t.Fatal("empty selection has members")
	}
}

func TestNewAnswer(t *testing.T) {
	if _, err := NewAnswer(" ", true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected blank rejection, got %v", err)
	}
	long := make([]rune, MaxAnswerTextLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewAnswer(string(long), false); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected long text rejection, got %v", err)
	}
	a, err := CorrectAnswer(" Paris ")
	if err != nil || a.Text != "Paris" || !a.Correct {
		t.Fatalf("unexpected answer %+v err=%v", a, err)
	}
}
