package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/coursemart-backend/internal/model"
)

func TestSubmitGradesAgainstStoredQuiz(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	fixed := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	f.takeSvc.now = func() time.Time { return fixed }

	quiz := f.createQuiz(t, 70)
	q := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, false, true, false)

	attempt, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), []model.SubmittedAnswer{
		{QuestionID: q.ID(), SelectedIndexes: []int{1}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score() != 1 || attempt.MaxScore() != 1 || !attempt.Passed() {
		t.Fatalf("unexpected grade: score=%d max=%d passed=%v", attempt.Score(), attempt.MaxScore(), attempt.Passed())
	}
	if !attempt.AttemptedAt().Equal(fixed) {
		t.Fatalf("attempted_at = %v, want %v", attempt.AttemptedAt(), fixed)
	}

	stored, err := f.attempts.GetByID(ctx, attempt.ID())
	if err != nil {
		t.Fatalf("attempt not stored: %v", err)
	}
	if got := stored.Answers(); len(got) != 1 || got[0].SelectedIndexes[0] != 1 {
		t.Fatalf("answers not stored verbatim: %+v", got)
	}

	if len(f.events.events) != 1 || f.events.events[0].AttemptID != attempt.ID() {
		t.Fatalf("expected one attempt event, got %+v", f.events.events)
	}
}

func TestSubmitPartialAndStaleAnswers(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	quiz := f.createQuiz(t, 70)
	q1 := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, true, false)
	q2 := f.addQuestion(t, quiz, model.QuestionTypeTrueFalse, true, false)
	f.addQuestion(t, quiz, model.QuestionTypeMultipleChoice, false, true, true)

	attempt, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), []model.SubmittedAnswer{
		{QuestionID: q1.ID(), SelectedIndexes: []int{0}},
		{QuestionID: q2.ID(), SelectedIndexes: []int{7}},
		{QuestionID: uuid.New(), SelectedIndexes: []int{0}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score() != 1 || attempt.MaxScore() != 3 || attempt.Passed() {
		t.Fatalf("unexpected grade: score=%d max=%d passed=%v", attempt.Score(), attempt.MaxScore(), attempt.Passed())
	}
	if attempt.ScorePercentage() != 33 {
		t.Fatalf("expected 33%%, got %d", attempt.ScorePercentage())
	}
}

func TestSubmitRejections(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	quiz := f.createQuiz(t, 70)
	q := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, true, false)

	if _, err := f.takeSvc.Submit(ctx, studentID, uuid.New(), []model.SubmittedAnswer{{QuestionID: q.ID(), SelectedIndexes: []int{0}}}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for unknown quiz, got %v", err)
	}

	cases := map[string][]model.SubmittedAnswer{
		"no answers":       nil,
		"duplicate entry":  {{QuestionID: q.ID(), SelectedIndexes: []int{0}}, {QuestionID: q.ID(), SelectedIndexes: []int{1}}},
		"negative index":   {{QuestionID: q.ID(), SelectedIndexes: []int{-1}}},
		"duplicate index":  {{QuestionID: q.ID(), SelectedIndexes: []int{0, 0}}},
		"missing question": {{QuestionID: uuid.Nil, SelectedIndexes: []int{0}}},
	}
	for name, submitted := range cases {
		if _, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), submitted); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	if n, _ := f.attempts.CountByQuiz(ctx, quiz.ID()); n != 0 {
		t.Fatalf("rejected submissions stored %d attempts", n)
	}
	if len(f.events.events) != 0 {
		t.Fatal("rejected submissions published events")
	}
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.events.err = errors.New("redis down")

	quiz := f.createQuiz(t, 50)
	q := f.addQuestion(t, quiz, model.QuestionTypeTrueFalse, false, true)

	attempt, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), []model.SubmittedAnswer{{QuestionID: q.ID(), SelectedIndexes: []int{1}}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.attempts.GetByID(ctx, attempt.ID()); err != nil {
		t.Fatalf("attempt not stored: %v", err)
	}
}

func TestAttemptQueries(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	quiz := f.createQuiz(t, 50)
	q1 := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, true, false)
	q2 := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, false, true)

	best, err := f.takeSvc.BestAttempt(ctx, studentID, quiz.ID())
	if err != nil || best != nil {
		t.Fatalf("expected no best attempt, got %v %v", best, err)
	}

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	submit := func(minute int, answers ...model.SubmittedAnswer) *model.QuizAttempt {
		t.Helper()
		f.takeSvc.now = func() time.Time { return base.Add(time.Duration(minute) * time.Minute) }
		a, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), answers)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		return a
	}

	first := submit(0, model.SubmittedAnswer{QuestionID: q1.ID(), SelectedIndexes: []int{0}})
	second := submit(1,
		model.SubmittedAnswer{QuestionID: q1.ID(), SelectedIndexes: []int{0}},
		model.SubmittedAnswer{QuestionID: q2.ID(), SelectedIndexes: []int{1}},
	)
	submit(2, model.SubmittedAnswer{QuestionID: q2.ID(), SelectedIndexes: []int{0}})

	list, err := f.takeSvc.ListAttempts(ctx, studentID, quiz.ID())
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if list[2].ID() != first.ID() {
		t.Fatal("attempts not ordered newest first")
	}

	best, err = f.takeSvc.BestAttempt(ctx, studentID, quiz.ID())
	if err != nil || best == nil || best.ID() != second.ID() {
		t.Fatalf("best attempt: %v %v", best, err)
	}

	if _, err := f.takeSvc.GetAttempt(ctx, studentID, quiz.ID(), second.ID()); err != nil {
		t.Fatalf("own attempt: %v", err)
	}
	if _, err := f.takeSvc.GetAttempt(ctx, studentID+1, quiz.ID(), second.ID()); !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("expected forbidden for another student, got %v", err)
	}
	if _, err := f.takeSvc.GetAttempt(ctx, studentID, uuid.New(), second.ID()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for another quiz, got %v", err)
	}
	if _, err := f.takeSvc.GetAttempt(ctx, studentID, quiz.ID(), uuid.New()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for unknown attempt, got %v", err)
	}

	all, _ := f.takeSvc.ListStudentAttempts(ctx, studentID)
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts for student, got %d", len(all))
	}
}

func TestAttemptKeepsGradeAfterQuizEdit(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	quiz := f.createQuiz(t, 50)
	q := f.addQuestion(t, quiz, model.QuestionTypeSingleChoice, true, false)

	attempt, err := f.takeSvc.Submit(ctx, studentID, quiz.ID(), []model.SubmittedAnswer{{QuestionID: q.ID(), SelectedIndexes: []int{0}}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.addQuestion(t, quiz, model.QuestionTypeTrueFalse, true, false)

	stored, _ := f.takeSvc.GetAttempt(ctx, studentID, quiz.ID(), attempt.ID())
	if stored.MaxScore() != 1 || stored.Score() != 1 {
		t.Fatalf("attempt changed after quiz edit: %d/%d", stored.Score(), stored.MaxScore())
	}
}

func TestGetPaperHidesAnswerKey(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	quiz := f.createQuiz(t, 50)
	f.addQuestion(t, quiz, model.QuestionTypeMultipleChoice, true, false, true)

	if _, err := f.takeSvc.GetPaper(ctx, quiz.ID()); err != nil {
		t.Fatalf("paper: %v", err)
	}
	raw, err := f.mr.Get("quiz:" + quiz.ID().String() + ":paper")
	if err != nil {
		t.Fatalf("cached paper: %v", err)
	}
	if strings.Contains(raw, "correct") {
		t.Fatalf("cached paper leaks the answer key: %s", raw)
	}

	if _, err := f.takeSvc.GetPaper(ctx, uuid.New()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
