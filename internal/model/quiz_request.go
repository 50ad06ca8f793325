package model

import "github.com/google/uuid"

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	Title        string `json:"title" binding:"required,notblank,max=200"`
	PassingScore *int   `json:"passing_score" binding:"required,min=0,max=100"`
	CourseID     *int   `json:"course_id" binding:"omitempty,min=1"`
	SectionID    *int   `json:"section_id" binding:"omitempty,min=1"`
	LessonID     *int   `json:"lesson_id" binding:"omitempty,min=1"`
}

// UpdateQuizRequest is the payload for changing a quiz's details.
type UpdateQuizRequest struct {
	Title        string `json:"title" binding:"required,notblank,max=200"`
	PassingScore *int   `json:"passing_score" binding:"required,min=0,max=100"`
}

// AssignQuizRequest attaches a quiz to one target. All fields empty detaches it.
type AssignQuizRequest struct {
	CourseID  *int `json:"course_id" binding:"omitempty,min=1"`
	SectionID *int `json:"section_id" binding:"omitempty,min=1"`
	LessonID  *int `json:"lesson_id" binding:"omitempty,min=1"`
}

// AnswerRequest is one authored answer option.
type AnswerRequest struct {
	Text    string `json:"text" binding:"required,notblank,max=500"`
	Correct bool   `json:"correct"`
}

// AddQuestionRequest is the payload for adding a question to a quiz.
type AddQuestionRequest struct {
	Text       string          `json:"text" binding:"required,notblank"`
	Type       string          `json:"type" binding:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE TRUE_FALSE"`
	OrderIndex int             `json:"order_index" binding:"min=0"`
	Points     int             `json:"points" binding:"omitempty,min=1"`
	Answers    []AnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// UpdateQuestionRequest replaces a question's text, order, points and answers.
// A zero Points keeps the current value.
type UpdateQuestionRequest struct {
	Text       string          `json:"text" binding:"required,notblank"`
	OrderIndex int             `json:"order_index" binding:"min=0"`
	Points     int             `json:"points" binding:"omitempty,min=1"`
	Answers    []AnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// ReorderQuestionsRequest lists every question id in the new order.
type ReorderQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}

// SubmittedAnswer is one raw entry of a student submission.
type SubmittedAnswer struct {
	QuestionID      uuid.UUID `json:"question_id" binding:"required"`
	SelectedIndexes []int     `json:"selected_indexes" binding:"dive,min=0"`
}

// SubmitAttemptRequest is the payload for submitting a quiz.
type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,min=1,dive"`
}
