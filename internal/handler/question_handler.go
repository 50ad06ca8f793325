package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/middleware"
	"github.com/stemsi/coursemart-backend/internal/model"
	"github.com/stemsi/coursemart-backend/internal/response"
	"github.com/stemsi/coursemart-backend/internal/service"
	"github.com/stemsi/coursemart-backend/internal/validator"
)

// QuestionHandler handles the questions of a quiz.
type QuestionHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(quizService *service.QuizService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		quizService: quizService,
		log:         log.With().Str("component", "question_handler").Logger(),
	}
}

// AddQuestion godoc
// POST /api/v1/instructor/quizzes/:quiz_id/questions
// Adds a question together with its answers.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": model.NewQuestionView(question)})
}

// UpdateQuestion godoc
// PUT /api/v1/instructor/quizzes/:quiz_id/questions/:question_id
// Replaces the question's text, order, points and answers.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "question_id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, questionID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": model.NewQuestionView(question)})
}

// DeleteQuestion godoc
// DELETE /api/v1/instructor/quizzes/:quiz_id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}
	questionID, ok := uuidParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, questionID); err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "question deleted"})
}

// ReorderQuestions godoc
// PUT /api/v1/instructor/quizzes/:quiz_id/question-order
// Sets the presentation order. The body must list every question exactly once.
func (h *QuestionHandler) ReorderQuestions(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.ReorderQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.ReorderQuestions(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": model.NewQuizView(quiz)})
}
