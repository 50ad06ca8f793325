package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxQuizTitleLength bounds the quiz title.
const MaxQuizTitleLength = 200

// Assignment attaches a quiz to at most one of a course, section or lesson.
type Assignment struct {
	CourseID  *int `json:"course_id,omitempty"`
	SectionID *int `json:"section_id,omitempty"`
	LessonID  *int `json:"lesson_id,omitempty"`
}

func (a Assignment) count() int {
	n := 0
	for _, id := range []*int{a.CourseID, a.SectionID, a.LessonID} {
		if id != nil {
			n++
		}
	}
	return n
}

// IsZero reports whether the quiz is not attached to anything.
func (a Assignment) IsZero() bool { return a.count() == 0 }

func (a Assignment) validate() error {
	if a.count() > 1 {
		return invalid("assignment", "a quiz may belong to only one of course, section or lesson")
	}
	for _, id := range []*int{a.CourseID, a.SectionID, a.LessonID} {
		if id != nil && *id <= 0 {
			return invalid("assignment", "target id must be positive")
		}
	}
	return nil
}

// Quiz is the aggregate root owning an ordered list of questions. All
// question changes go through it.
type Quiz struct {
	id           uuid.UUID
	title        string
	passingScore int
	instructorID int
	assignment   Assignment
	questions    []*Question
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewQuiz validates and creates an empty quiz owned by instructorID.
func NewQuiz(title string, passingScore, instructorID int, assignment Assignment) (*Quiz, error) {
	title, err := validateQuizDetails(title, passingScore)
	if err != nil {
		return nil, err
	}
	if instructorID <= 0 {
		return nil, invalid("instructor_id", "is required")
	}
	if err := assignment.validate(); err != nil {
		return nil, err
	}
	return &Quiz{
		id:           uuid.New(),
		title:        title,
		passingScore: passingScore,
		instructorID: instructorID,
		assignment:   assignment,
	}, nil
}

func validateQuizDetails(title string, passingScore int) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "must not be blank")
	}
	if utf8.RuneCountInString(title) > MaxQuizTitleLength {
		return "", invalid("title", "must be at most 200 characters")
	}
	if passingScore < 0 || passingScore > 100 {
		return "", invalid("passing_score", "must be between 0 and 100")
	}
	return title, nil
}

func (q *Quiz) ID() uuid.UUID          { return q.id }
func (q *Quiz) Title() string          { return q.title }
func (q *Quiz) PassingScore() int      { return q.passingScore }
func (q *Quiz) InstructorID() int      { return q.instructorID }
func (q *Quiz) Assignment() Assignment { return q.assignment }
func (q *Quiz) Version() int           { return q.version }
func (q *Quiz) CreatedAt() time.Time   { return q.createdAt }
func (q *Quiz) UpdatedAt() time.Time   { return q.updatedAt }

// Questions returns the questions in presentation order.
func (q *Quiz) Questions() []*Question {
	out := make([]*Question, len(q.questions))
	copy(out, q.questions)
	return out
}

// UpdateDetails changes the title and passing threshold.
func (q *Quiz) UpdateDetails(title string, passingScore int) error {
	title, err := validateQuizDetails(title, passingScore)
	if err != nil {
		return err
	}
	q.title = title
	q.passingScore = passingScore
	return nil
}

// AssignToCourse attaches the quiz to a course and detaches it from anything else.
func (q *Quiz) AssignToCourse(courseID int) error {
	return q.assign(Assignment{CourseID: &courseID})
}

// AssignToSection attaches the quiz to a section and detaches it from anything else.
func (q *Quiz) AssignToSection(sectionID int) error {
	return q.assign(Assignment{SectionID: &sectionID})
}

// AssignToLesson attaches the quiz to a lesson and detaches it from anything else.
func (q *Quiz) AssignToLesson(lessonID int) error {
	return q.assign(Assignment{LessonID: &lessonID})
}

// Unassign detaches the quiz.
func (q *Quiz) Unassign() { q.assignment = Assignment{} }

func (q *Quiz) assign(a Assignment) error {
	if err := a.validate(); err != nil {
		return err
	}
	q.assignment = a
	return nil
}

// EnsureOwnedBy returns an AuthorizationError unless actorID owns the quiz.
func (q *Quiz) EnsureOwnedBy(actorID int) error {
	if actorID != q.instructorID {
		return &AuthorizationError{Resource: "quiz " + q.id.String(), ActorID: actorID}
	}
	return nil
}

// AddQuestion appends question to the end of the presentation order.
func (q *Quiz) AddQuestion(question *Question) error {
	if question == nil {
		return invalid("question", "is required")
	}
	for _, existing := range q.questions {
		if existing.id == question.id {
			return invalid("question", "is already part of this quiz")
		}
	}
	if err := question.attachTo(q.id); err != nil {
		return err
	}
	q.questions = append(q.questions, question)
	return nil
}

// FindQuestion returns the question with the given id.
func (q *Quiz) FindQuestion(questionID uuid.UUID) (*Question, error) {
	for _, question := range q.questions {
		if question.id == questionID {
			return question, nil
		}
	}
	return nil, &NotFoundError{Resource: "question", ID: questionID.String()}
}

// RemoveQuestion detaches the question with the given id.
func (q *Quiz) RemoveQuestion(questionID uuid.UUID) error {
	if _, err := q.FindQuestion(questionID); err != nil {
		return err
	}
	kept := q.questions[:0]
	for _, question := range q.questions {
		if question.id != questionID {
			kept = append(kept, question)
		}
	}
	q.questions = kept
	return nil
}

// ReorderQuestions rearranges the questions to match ids, which must be a
// permutation of the current question ids. Each question's order index is
// reset to its new position.
func (q *Quiz) ReorderQuestions(ids []uuid.UUID) error {
	if len(ids) != len(q.questions) {
		return invalid("question_ids", "must list every question of the quiz exactly once")
	}
	byID := make(map[uuid.UUID]*Question, len(q.questions))
	for _, question := range q.questions {
		byID[question.id] = question
	}

	ordered := make([]*Question, 0, len(ids))
	for _, id := range ids {
		question, ok := byID[id]
		if !ok {
			return invalid("question_ids", "must list every question of the quiz exactly once")
		}
		delete(byID, id)
		ordered = append(ordered, question)
	}

	for i, question := range ordered {
		question.orderIndex = i
	}
	q.questions = ordered
	return nil
}

// MaxScore is the sum of points over the current questions.
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.questions {
		total += question.points
	}
	return total
}

// Score grades answers against the current questions. Questions without a
// submitted answer contribute nothing, and answers for unknown questions are
// ignored.
func (q *Quiz) Score(answers []StudentAnswer) int {
	byQuestion := make(map[uuid.UUID]StudentAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	score := 0
	for _, question := range q.questions {
		a, ok := byQuestion[question.id]
		if !ok {
			continue
		}
		if question.IsAnswerCorrect(a.SelectedIndexes) {
			score += question.points
		}
	}
	return score
}

// IsPassed compares the floored percentage with the passing threshold. A quiz
// worth zero points can never be passed.
func (q *Quiz) IsPassed(score, maxScore int) bool {
	if maxScore == 0 {
		return false
	}
	return scorePercentage(score, maxScore) >= q.passingScore
}

// Grade is the result of scoring one submission.
type Grade struct {
	Score    int
	MaxScore int
	Passed   bool
}

// Grade scores answers and decides pass/fail in one step.
func (q *Quiz) Grade(answers []StudentAnswer) Grade {
	score := q.Score(answers)
	maxScore := q.MaxScore()
	return Grade{Score: score, MaxScore: maxScore, Passed: q.IsPassed(score, maxScore)}
}

// MarkPersisted records the storage version and timestamps after a write.
func (q *Quiz) MarkPersisted(version int, createdAt, updatedAt time.Time) {
	q.version = version
	q.createdAt = createdAt
	q.updatedAt = updatedAt
}

func scorePercentage(score, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	return score * 100 / maxScore
}

// QuizRecord is the stored shape of a quiz together with its questions.
type QuizRecord struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	PassingScore int              `json:"passing_score"`
	InstructorID int              `json:"instructor_id"`
	Assignment   Assignment       `json:"assignment"`
	Version      int              `json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Questions    []QuestionRecord `json:"questions"`
}

// Record snapshots q for persistence.
func (q *Quiz) Record() QuizRecord {
	questions := make([]QuestionRecord, 0, len(q.questions))
	for _, question := range q.questions {
		questions = append(questions, question.Record())
	}
	return QuizRecord{
		ID:           q.id,
		Title:        q.title,
		PassingScore: q.passingScore,
		InstructorID: q.instructorID,
		Assignment:   q.assignment,
		Version:      q.version,
		CreatedAt:    q.createdAt,
		UpdatedAt:    q.updatedAt,
		Questions:    questions,
	}
}

// QuizFromRecord rebuilds a quiz from storage without re-validating it.
func QuizFromRecord(r QuizRecord) *Quiz {
	questions := make([]*Question, 0, len(r.Questions))
	for _, qr := range r.Questions {
		questions = append(questions, QuestionFromRecord(qr))
	}
	return &Quiz{
		id:           r.ID,
		title:        r.Title,
		passingScore: r.PassingScore,
		instructorID: r.InstructorID,
		assignment:   r.Assignment,
		questions:    questions,
		version:      r.Version,
		createdAt:    r.CreatedAt,
		updatedAt:    r.UpdatedAt,
	}
}
