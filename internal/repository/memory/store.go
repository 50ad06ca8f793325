// Package memory provides in-process quiz, attempt and result stores with the
// same contracts as the PostgreSQL repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/coursemart-backend/internal/model"
)

// QuizStore keeps quizzes as records so callers never share state with it.
type QuizStore struct {
	mu       sync.RWMutex
	quizzes  map[uuid.UUID]model.QuizRecord
	attempts *AttemptStore
	now      func() time.Time
}

// NewQuizStore creates an empty QuizStore. attempts may be nil when quiz
// deletion never purges attempts.
func NewQuizStore(attempts *AttemptStore) *QuizStore {
	return &QuizStore{
		quizzes:  make(map[uuid.UUID]model.QuizRecord),
		attempts: attempts,
		now:      time.Now,
	}
}

func (s *QuizStore) Create(_ context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	quiz.MarkPersisted(1, now, now)
	s.quizzes[quiz.ID()] = quiz.Record()
	return nil
}

func (s *QuizStore) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.quizzes[id]
	if !ok {
		return nil, &model.NotFoundError{Resource: "quiz", ID: id.String()}
	}
	return model.QuizFromRecord(rec), nil
}

func (s *QuizStore) ListByInstructor(_ context.Context, instructorID, limit, offset int) ([]*model.Quiz, int, error) {
	all := s.filter(func(r model.QuizRecord) bool { return r.InstructorID == instructorID })
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *QuizStore) ListByCourse(_ context.Context, courseID int) ([]*model.Quiz, error) {
	out := s.filter(func(r model.QuizRecord) bool {
		return r.Assignment.CourseID != nil && *r.Assignment.CourseID == courseID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (s *QuizStore) ListByLesson(_ context.Context, lessonID int) ([]*model.Quiz, error) {
	out := s.filter(func(r model.QuizRecord) bool {
		return r.Assignment.LessonID != nil && *r.Assignment.LessonID == lessonID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (s *QuizStore) Save(_ context.Context, quiz *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.quizzes[quiz.ID()]
	if !ok {
		return &model.NotFoundError{Resource: "quiz", ID: quiz.ID().String()}
	}
	if stored.Version != quiz.Version() {
		return &model.ConflictError{Resource: "quiz", ID: quiz.ID().String()}
	}

	quiz.MarkPersisted(stored.Version+1, stored.CreatedAt, s.now().UTC())
	s.quizzes[quiz.ID()] = quiz.Record()
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id uuid.UUID, purgeAttempts bool) error {
	s.mu.Lock()
	if _, ok := s.quizzes[id]; !ok {
		s.mu.Unlock()
		return &model.NotFoundError{Resource: "quiz", ID: id.String()}
	}
	delete(s.quizzes, id)
	s.mu.Unlock()

	if purgeAttempts && s.attempts != nil {
		_, err := s.attempts.DeleteByQuiz(ctx, id)
		return err
	}
	return nil
}

func (s *QuizStore) filter(keep func(model.QuizRecord) bool) []*model.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Quiz
	for _, rec := range s.quizzes {
		if keep(rec) {
			out = append(out, model.QuizFromRecord(rec))
		}
	}
	return out
}

// AttemptStore keeps attempts in insertion order. It also tracks result
// summaries so a purge clears both, like the SQL repository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []model.AttemptRecord
	results  *ResultStore
}

// NewAttemptStore creates an empty AttemptStore. results may be nil.
func NewAttemptStore(results *ResultStore) *AttemptStore {
	return &AttemptStore{results: results}
}

func (s *AttemptStore) Create(_ context.Context, attempt *model.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt.Record())
	return nil
}

func (s *AttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.attempts {
		if rec.ID == id {
			return model.AttemptFromRecord(rec), nil
		}
	}
	return nil, &model.NotFoundError{Resource: "attempt", ID: id.String()}
}

func (s *AttemptStore) ListByQuizAndStudent(_ context.Context, quizID uuid.UUID, studentID int) ([]*model.QuizAttempt, error) {
	return s.newestFirst(func(r model.AttemptRecord) bool {
		return r.QuizID == quizID && r.StudentID == studentID
	}), nil
}

func (s *AttemptStore) ListByStudent(_ context.Context, studentID int) ([]*model.QuizAttempt, error) {
	return s.newestFirst(func(r model.AttemptRecord) bool { return r.StudentID == studentID }), nil
}

func (s *AttemptStore) FindBest(ctx context.Context, quizID uuid.UUID, studentID int) (*model.QuizAttempt, error) {
	var best *model.QuizAttempt
	attempts, _ := s.ListByQuizAndStudent(ctx, quizID, studentID)
	// Newest first, so walking backwards keeps the earliest among ties.
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].IsBetterThan(best) {
			best = attempts[i]
		}
	}
	return best, nil
}

func (s *AttemptStore) CountByQuiz(_ context.Context, quizID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.attempts {
		if rec.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (s *AttemptStore) DeleteByQuiz(_ context.Context, quizID uuid.UUID) (int64, error) {
	s.mu.Lock()
	kept := s.attempts[:0]
	var removed int64
	for _, rec := range s.attempts {
		if rec.QuizID == quizID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.attempts = kept
	s.mu.Unlock()

	if s.results != nil {
		s.results.deleteByQuiz(quizID)
	}
	return removed, nil
}

func (s *AttemptStore) newestFirst(keep func(model.AttemptRecord) bool) []*model.QuizAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.QuizAttempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if keep(s.attempts[i]) {
			out = append(out, model.AttemptFromRecord(s.attempts[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt().After(out[j].AttemptedAt()) })
	return out
}

type resultKey struct {
	quizID    uuid.UUID
	studentID int
}

// ResultStore keeps per-student best results.
type ResultStore struct {
	mu      sync.RWMutex
	results map[resultKey]model.QuizResult
}

// NewResultStore creates an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[resultKey]model.QuizResult)}
}

func (s *ResultStore) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]model.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.QuizResult
	for k, res := range s.results {
		if k.quizID == quizID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestScore != out[j].BestScore {
			return out[i].BestScore > out[j].BestScore
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

func (s *ResultStore) MergeBatch(_ context.Context, batch []model.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range batch {
		k := resultKey{quizID: in.QuizID, studentID: in.StudentID}
		cur, ok := s.results[k]
		if !ok {
			s.results[k] = in
			continue
		}
		if in.BestScore > cur.BestScore {
			cur.BestScore, cur.MaxScore, cur.Passed = in.BestScore, in.MaxScore, in.Passed
		}
		cur.AttemptCount += in.AttemptCount
		if in.LastAttemptAt.After(cur.LastAttemptAt) {
			cur.LastAttemptAt = in.LastAttemptAt
		}
		s.results[k] = cur
	}
	return nil
}

func (s *ResultStore) deleteByQuiz(quizID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.results {
		if k.quizID == quizID {
			delete(s.results, k)
		}
	}
}
