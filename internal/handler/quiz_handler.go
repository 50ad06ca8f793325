package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/middleware"
	"github.com/stemsi/coursemart-backend/internal/model"
	"github.com/stemsi/coursemart-backend/internal/response"
	"github.com/stemsi/coursemart-backend/internal/service"
	"github.com/stemsi/coursemart-backend/internal/validator"
)

// QuizHandler handles quiz authoring endpoints.
type QuizHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// ListQuizzes godoc
// GET /api/v1/instructor/quizzes
// Lists the caller's quizzes with pagination.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	quizzes, pagination, err := h.quizService.ListByInstructor(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": summaries(quizzes)}, pagination)
}

// CreateQuiz godoc
// POST /api/v1/instructor/quizzes
// Creates an empty quiz, optionally attached to a course, section or lesson.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": model.NewQuizView(quiz)})
}

// GetQuiz godoc
// GET /api/v1/instructor/quizzes/:quiz_id
// Returns the full quiz, answer key included.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetOwned(c.Request.Context(), middleware.GetClaims(c).UserID, quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": model.NewQuizView(quiz)})
}

// UpdateQuiz godoc
// PUT /api/v1/instructor/quizzes/:quiz_id
// Changes the title and passing score.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": model.NewQuizView(quiz)})
}

// AssignQuiz godoc
// PUT /api/v1/instructor/quizzes/:quiz_id/assignment
// Attaches the quiz to one course, section or lesson; an empty body detaches it.
func (h *QuizHandler) AssignQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	var req model.AssignQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Assign(c.Request.Context(), middleware.GetClaims(c).UserID, quizID, req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": model.NewQuizView(quiz)})
}

// DeleteQuiz godoc
// DELETE /api/v1/instructor/quizzes/:quiz_id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), middleware.GetClaims(c).UserID, quizID); err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted"})
}

// GetResults godoc
// GET /api/v1/instructor/quizzes/:quiz_id/results
// Returns each student's best result and the total number of attempts.
func (h *QuizHandler) GetResults(c *gin.Context) {
	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	results, err := h.quizService.Results(c.Request.Context(), middleware.GetClaims(c).UserID, quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, results)
}

// ListCourseQuizzes godoc
// GET /api/v1/courses/:course_id/quizzes
// Lists quizzes attached directly to a course. Open to any authenticated user.
func (h *QuizHandler) ListCourseQuizzes(c *gin.Context) {
	courseID, ok := intParam(c, "course_id")
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": summaries(quizzes)})
}

// ListLessonQuizzes godoc
// GET /api/v1/lessons/:lesson_id/quizzes
// Lists quizzes attached to a lesson.
func (h *QuizHandler) ListLessonQuizzes(c *gin.Context) {
	lessonID, ok := intParam(c, "lesson_id")
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByLesson(c.Request.Context(), lessonID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": summaries(quizzes)})
}

func summaries(quizzes []*model.Quiz) []model.QuizSummary {
	out := make([]model.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, model.NewQuizSummary(q))
	}
	return out
}
