package model

import (
	"strings"

	"github.com/google/uuid"
)

// QuestionType determines how many answers may be marked correct.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeSingleChoice, QuestionTypeMultipleChoice, QuestionTypeTrueFalse:
		return true
	}
	return false
}

// DefaultQuestionPoints is used when a question is created without points.
const DefaultQuestionPoints = 1

// Question is a single gradable prompt. It belongs to exactly one quiz and
// is only mutated through its methods so the answer-shape rules always hold.
type Question struct {
	id         uuid.UUID
	quizID     uuid.UUID
	text       string
	qtype      QuestionType
	points     int
	orderIndex int
	answers    []Answer
}

// NewQuestion creates a detached question with no answers and default points.
func NewQuestion(text string, qtype QuestionType, orderIndex int) (*Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "must not be blank")
	}
	if qtype == "" {
		return nil, invalid("type", "is required")
	}
	if !qtype.Valid() {
		return nil, invalid("type", "must be one of SINGLE_CHOICE, MULTIPLE_CHOICE, TRUE_FALSE")
	}
	if orderIndex < 0 {
		return nil, invalid("order_index", "must not be negative")
	}
	return &Question{
		id:         uuid.New(),
		text:       text,
		qtype:      qtype,
		points:     DefaultQuestionPoints,
		orderIndex: orderIndex,
	}, nil
}

func (q *Question) ID() uuid.UUID      { return q.id }
func (q *Question) QuizID() uuid.UUID  { return q.quizID }
func (q *Question) Text() string       { return q.text }
func (q *Question) Type() QuestionType { return q.qtype }
func (q *Question) Points() int        { return q.points }
func (q *Question) OrderIndex() int    { return q.orderIndex }

// Answers returns a copy of the answer list in authored order.
func (q *Question) Answers() []Answer {
	out := make([]Answer, len(q.answers))
	copy(out, q.answers)
	return out
}

// SetAnswers replaces the whole answer list. The previous list is discarded
// only when the new one satisfies the rules for the question type.
func (q *Question) SetAnswers(answers []Answer) error {
	if len(answers) == 0 {
		return invalid("answers", "must contain at least one answer")
	}

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	if correct == 0 {
		return invalid("answers", "must contain at least one correct answer")
	}

	switch q.qtype {
	case QuestionTypeSingleChoice:
		if correct != 1 {
			return invalid("answers", "single choice question must have exactly one correct answer")
		}
	case QuestionTypeTrueFalse:
		if len(answers) != 2 {
			return invalid("answers", "true/false question must have exactly two answers")
		}
		if correct != 1 {
			return invalid("answers", "true/false question must have exactly one correct answer")
		}
	}

	q.answers = make([]Answer, len(answers))
	copy(q.answers, answers)
	return nil
}

// UpdateText changes the prompt.
func (q *Question) UpdateText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid("text", "must not be blank")
	}
	q.text = text
	return nil
}

// UpdateOrderIndex changes the display hint.
func (q *Question) UpdateOrderIndex(orderIndex int) error {
	if orderIndex < 0 {
		return invalid("order_index", "must not be negative")
	}
	q.orderIndex = orderIndex
	return nil
}

// UpdatePoints changes the points awarded for a correct answer.
func (q *Question) UpdatePoints(points int) error {
	if points < 1 {
		return invalid("points", "must be at least 1")
	}
	q.points = points
	return nil
}

// CorrectIndexes returns the positions of the answers marked correct.
func (q *Question) CorrectIndexes() []int {
	var idx []int
	for i, a := range q.answers {
		if a.Correct {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsAnswerCorrect reports whether selected, taken as a set, equals the set of
// correct answer positions exactly. Subsets and supersets are both wrong.
func (q *Question) IsAnswerCorrect(selected []int) bool {
	if len(selected) == 0 {
		return false
	}

	chosen := make(map[int]struct{}, len(selected))
	for _, idx := range selected {
		chosen[idx] = struct{}{}
	}

	correct := q.CorrectIndexes()
	if len(chosen) != len(correct) {
		return false
	}
	for _, idx := range correct {
		if _, ok := chosen[idx]; !ok {
			return false
		}
	}
	return true
}

func (q *Question) attachTo(quizID uuid.UUID) error {
	if q.quizID != uuid.Nil && q.quizID != quizID {
		return invalid("question", "already belongs to another quiz")
	}
	q.quizID = quizID
	return nil
}

// QuestionRecord is the stored shape of a question.
type QuestionRecord struct {
	ID         uuid.UUID    `json:"id"`
	QuizID     uuid.UUID    `json:"quiz_id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Points     int          `json:"points"`
	OrderIndex int          `json:"order_index"`
	Answers    []Answer     `json:"answers"`
}

// Record snapshots q for persistence.
func (q *Question) Record() QuestionRecord {
	return QuestionRecord{
		ID:         q.id,
		QuizID:     q.quizID,
		Text:       q.text,
		Type:       q.qtype,
		Points:     q.points,
		OrderIndex: q.orderIndex,
		Answers:    q.Answers(),
	}
}

// QuestionFromRecord rebuilds a question from storage without re-validating it.
func QuestionFromRecord(r QuestionRecord) *Question {
	answers := make([]Answer, len(r.Answers))
	copy(answers, r.Answers)
	return &Question{
		id:         r.ID,
		quizID:     r.QuizID,
		text:       r.Text,
		qtype:      r.Type,
		points:     r.Points,
		orderIndex: r.OrderIndex,
		answers:    answers,
	}
}
