package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/handler"
	"github.com/stemsi/coursemart-backend/internal/middleware"
	"github.com/stemsi/coursemart-backend/internal/response"
	"github.com/stemsi/coursemart-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz     *handler.QuizHandler
	Question *handler.QuestionHandler
	Attempt  *handler.AttemptHandler
	Live     *handler.LiveHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	submitLimiter *middleware.SubmitLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", middleware.CacheControl(5), func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Instructor Group (JWT, instructor role) ────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService), middleware.NoStore())
	{
		instructorAPI.GET("/quizzes", handlers.Quiz.ListQuizzes)
		instructorAPI.POST("/quizzes", handlers.Quiz.CreateQuiz)
		instructorAPI.GET("/quizzes/:quiz_id", handlers.Quiz.GetQuiz)
		instructorAPI.PUT("/quizzes/:quiz_id", handlers.Quiz.UpdateQuiz)
		instructorAPI.DELETE("/quizzes/:quiz_id", handlers.Quiz.DeleteQuiz)
		instructorAPI.PUT("/quizzes/:quiz_id/assignment", handlers.Quiz.AssignQuiz)
		instructorAPI.GET("/quizzes/:quiz_id/results", handlers.Quiz.GetResults)

		instructorAPI.POST("/quizzes/:quiz_id/questions", handlers.Question.AddQuestion)
		instructorAPI.PUT("/quizzes/:quiz_id/questions/:question_id", handlers.Question.UpdateQuestion)
		instructorAPI.DELETE("/quizzes/:quiz_id/questions/:question_id", handlers.Question.DeleteQuestion)
		instructorAPI.PUT("/quizzes/:quiz_id/question-order", handlers.Question.ReorderQuestions)
	}

	// ─── 2. Student Group (JWT, student role) ──────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService), middleware.NoStore())
	{
		studentAPI.GET("/quizzes/:quiz_id/take", handlers.Attempt.TakeQuiz)
		studentAPI.POST("/quizzes/:quiz_id/submit", submitLimiter.Middleware(), handlers.Attempt.SubmitQuiz)
		studentAPI.GET("/quizzes/:quiz_id/attempts", handlers.Attempt.ListAttempts)
		studentAPI.GET("/quizzes/:quiz_id/attempts/best", handlers.Attempt.BestAttempt)
		studentAPI.GET("/quizzes/:quiz_id/attempts/:attempt_id", handlers.Attempt.GetAttempt)
		studentAPI.GET("/attempts", handlers.Attempt.ListMyAttempts)
	}

	// ─── 3. Shared Group (any authenticated user) ──────────────────────
	sharedAPI := router.Group("/api/v1")
	sharedAPI.Use(middleware.RequireAnyJWT(authService))
	{
		sharedAPI.GET("/courses/:course_id/quizzes", handlers.Quiz.ListCourseQuizzes)
		sharedAPI.GET("/lessons/:lesson_id/quizzes", handlers.Quiz.ListLessonQuizzes)
	}

	// ─── 4. WebSocket Group (instructor WS auth) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireInstructorWSAuth(authService))
	{
		ws.GET("/instructor/quizzes/:quiz_id/live", handlers.Live.QuizLiveFeed)
	}

	return router
}
