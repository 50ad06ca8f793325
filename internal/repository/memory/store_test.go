package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/coursemart-backend/internal/model"
)

func newQuiz(t *testing.T) *model.Quiz {
	t.Helper()
	q, err := model.NewQuiz("Memory quiz", 50, 1, model.Assignment{})
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}
	return q
}

func TestQuizStoreOptimisticVersion(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(nil)
	quiz := newQuiz(t)
	if err := store.Create(ctx, quiz); err != nil {
		t.Fatal(err)
	}

	first, _ := store.GetByID(ctx, quiz.ID())
	second, _ := store.GetByID(ctx, quiz.ID())

	if err := first.UpdateDetails("Renamed", 60); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if first.Version() != 2 {
		t.Fatalf("version = %d, want 2", first.Version())
	}

	if err := second.UpdateDetails("Lost update", 70); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, second); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := store.GetByID(ctx, quiz.ID())
	if stored.Title() != "Renamed" {
		t.Fatalf("stale save overwrote data: %s", stored.Title())
	}

	if err := store.Save(ctx, newQuiz(t)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found for unsaved quiz, got %v", err)
	}
}

func TestQuizStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore(nil)
	quiz := newQuiz(t)
	_ = store.Create(ctx, quiz)

	loaded, _ := store.GetByID(ctx, quiz.ID())
	_ = loaded.UpdateDetails("Local only", 10)

	again, _ := store.GetByID(ctx, quiz.ID())
	if again.Title() != "Memory quiz" {
		t.Fatal("unsaved change leaked into the store")
	}
}

func TestDeletePurgesAttemptsOnRequest(t *testing.T) {
	ctx := context.Background()
	results := NewResultStore()
	attempts := NewAttemptStore(results)
	quizzes := NewQuizStore(attempts)

	keep, purge := newQuiz(t), newQuiz(t)
	_ = quizzes.Create(ctx, keep)
	_ = quizzes.Create(ctx, purge)

	answers := []model.StudentAnswer{{QuestionID: uuid.New(), SelectedIndexes: []int{0}}}
	for _, q := range []*model.Quiz{keep, purge} {
		a, err := model.NewQuizAttempt(q.ID(), 9, 1, 1, true, answers, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		_ = attempts.Create(ctx, a)
		_ = results.MergeBatch(ctx, []model.QuizResult{{QuizID: q.ID(), StudentID: 9, BestScore: 1, MaxScore: 1, AttemptCount: 1}})
	}

	if err := quizzes.Delete(ctx, keep.ID(), false); err != nil {
		t.Fatal(err)
	}
	if n, _ := attempts.CountByQuiz(ctx, keep.ID()); n != 1 {
		t.Fatalf("attempts of kept history were removed: %d", n)
	}

	if err := quizzes.Delete(ctx, purge.ID(), true); err != nil {
		t.Fatal(err)
	}
	if n, _ := attempts.CountByQuiz(ctx, purge.ID()); n != 0 {
		t.Fatalf("attempts survived purge: %d", n)
	}
	if res, _ := results.ListByQuiz(ctx, purge.ID()); len(res) != 0 {
		t.Fatalf("results survived purge: %+v", res)
	}

	if err := quizzes.Delete(ctx, purge.ID(), true); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestFindBestPrefersEarliestOnTie(t *testing.T) {
	ctx := context.Background()
	attempts := NewAttemptStore(nil)
	quizID := uuid.New()
	answers := []model.StudentAnswer{{QuestionID: uuid.New()}}
	t0 := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	if best, err := attempts.FindBest(ctx, quizID, 4); best != nil || err != nil {
		t.Fatalf("expected no attempt, got %v %v", best, err)
	}

	var ids []uuid.UUID
	for i, score := range []int{2, 3, 3, 1} {
		a, _ := model.NewQuizAttempt(quizID, 4, score, 3, false, answers, t0.Add(time.Duration(i)*time.Minute))
		_ = attempts.Create(ctx, a)
		ids = append(ids, a.ID())
	}

	best, err := attempts.FindBest(ctx, quizID, 4)
	if err != nil || best.ID() != ids[1] {
		t.Fatalf("expected the first 3-point attempt, got %v %v", best, err)
	}
}

func TestResultStoreMerge(t *testing.T) {
	ctx := context.Background()
	results := NewResultStore()
	quizID := uuid.New()
	t0 := time.Now().UTC()

	_ = results.MergeBatch(ctx, []model.QuizResult{{QuizID: quizID, StudentID: 1, BestScore: 3, MaxScore: 4, Passed: true, AttemptCount: 2, LastAttemptAt: t0}})
	_ = results.MergeBatch(ctx, []model.QuizResult{{QuizID: quizID, StudentID: 1, BestScore: 2, MaxScore: 4, AttemptCount: 1, LastAttemptAt: t0.Add(time.Hour)}})

	got, _ := results.ListByQuiz(ctx, quizID)
	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}
	r := got[0]
	if r.BestScore != 3 || !r.Passed || r.AttemptCount != 3 || !r.LastAttemptAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected merge: %+v", r)
	}
}
