package model

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxAnswerTextLength bounds the text of a single answer option.
const MaxAnswerTextLength = 500

// Answer is one selectable option of a question. Answers are addressed by
// their 0-based position inside the question.
type Answer struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// NewAnswer validates and builds an Answer.
func NewAnswer(text string, correct bool) (Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, invalid("answers.text", "must not be blank")
	}
	if utf8.RuneCountInString(text) > MaxAnswerTextLength {
		return Answer{}, invalid("answers.text", "must be at most 500 characters")
	}
	return Answer{Text: text, Correct: correct}, nil
}

// CorrectAnswer is shorthand for NewAnswer(text, true).
func CorrectAnswer(text string) (Answer, error) { return NewAnswer(text, true) }

// IncorrectAnswer is shorthand for NewAnswer(text, false).
func IncorrectAnswer(text string) (Answer, error) { return NewAnswer(text, false) }

// StudentAnswer is the set of answer indexes a student picked for one question.
type StudentAnswer struct {
	QuestionID      uuid.UUID `json:"question_id"`
	SelectedIndexes []int     `json:"selected_indexes"`
}

// NewStudentAnswer validates a raw selection. Index bounds are not checked
// here: an index past the end of the answer list simply never matches.
func NewStudentAnswer(questionID uuid.UUID, selected []int) (StudentAnswer, error) {
	if questionID == uuid.Nil {
		return StudentAnswer{}, invalid("answers.question_id", "is required")
	}
	seen := make(map[int]struct{}, len(selected))
	indexes := make([]int, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 {
			return StudentAnswer{}, invalid("answers.selected_indexes", "must not be negative")
		}
		if _, dup := seen[idx]; dup {
			return StudentAnswer{}, invalid("answers.selected_indexes", "must not contain duplicates")
		}
		seen[idx] = struct{}{}
		indexes = append(indexes, idx)
	}
	return StudentAnswer{QuestionID: questionID, SelectedIndexes: indexes}, nil
}

// Selection returns the selected indexes as a set.
func (a StudentAnswer) Selection() map[int]struct{} {
	set := make(map[int]struct{}, len(a.SelectedIndexes))
	for _, idx := range a.SelectedIndexes {
		set[idx] = struct{}{}
	}
	return set
}
