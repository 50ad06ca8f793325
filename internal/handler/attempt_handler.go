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

// AttemptHandler handles the student side: taking and submitting quizzes.
type AttemptHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "attempt_handler").Logger(),
	}
}

// TakeQuiz godoc
// GET /api/v1/student/quizzes/:quiz_id/take
// Returns the quiz without its answer key.
func (h *AttemptHandler) TakeQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	paper, err := h.attemptService.GetPaper(c.Request.Context(), quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": paper})
}

// SubmitQuiz godoc
// POST /api/v1/student/quizzes/:quiz_id/submit
// Grades the submission and records it as a new attempt.
func (h *AttemptHandler) SubmitQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, req.Answers)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": model.NewAttemptView(attempt)})
}

// ListAttempts godoc
// GET /api/v1/student/quizzes/:quiz_id/attempts
// Lists the caller's attempts for the quiz, newest first.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListAttempts(c.Request.Context(), middleware.GetClaims(c).UserID, quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attemptViews(attempts)})
}

// ListMyAttempts godoc
// GET /api/v1/student/attempts
// Lists every attempt of the caller across quizzes.
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	attempts, err := h.attemptService.ListStudentAttempts(c.Request.Context(), middleware.GetClaims(c).UserID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attemptViews(attempts)})
}

// BestAttempt godoc
// GET /api/v1/student/quizzes/:quiz_id/attempts/best
// Returns the caller's highest-scoring attempt, or 204 when there is none.
func (h *AttemptHandler) BestAttempt(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	best, err := h.attemptService.BestAttempt(c.Request.Context(), middleware.GetClaims(c).UserID, quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}
	if best == nil {
		response.NoContent(c)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": model.NewAttemptView(best)})
}

// GetAttempt godoc
// GET /api/v1/student/quizzes/:quiz_id/attempts/:attempt_id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}
	attemptID, ok := uuidParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, attemptID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": model.NewAttemptView(attempt)})
}

func attemptViews(attempts []*model.QuizAttempt) []model.AttemptView {
	out := make([]model.AttemptView, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, model.NewAttemptView(a))
	}
	return out
}
