package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/handler"
	"github.com/learnhub/proctor-backend/internal/middleware"
	"github.com/learnhub/proctor-backend/internal/response"
	"github.com/learnhub/proctor-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	ExamRequest *handler.ExamRequestHandler
	ExamSet     *handler.ExamSetHandler
	Question    *handler.QuestionHandler
	Assignment  *handler.AssignmentHandler
	ExamSession *handler.ExamSessionHandler
	Monitor     *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded media files statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the guessable verification routes
	// (10 requests per minute per IP).
	verifyLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Student Group (JWT, student role) ──────────────────────────
	studentAPI := router.Group("/api/v1")
	studentAPI.Use(middleware.RequireAuth(authService), middleware.RequireStudent())
	{
		studentAPI.POST("/exam-requests", handlers.ExamRequest.Submit)
		studentAPI.GET("/courses/:courseId/exam-request", handlers.ExamRequest.Status)
		studentAPI.GET("/courses/:courseId/assignment", handlers.Assignment.MyAssignment)

		studentAPI.POST("/exams/verify-code", verifyLimiter.Middleware(), handlers.ExamSession.VerifyCode)
		studentAPI.POST("/exams/start-session", handlers.ExamSession.StartSession)
		studentAPI.GET("/exams/session-status", handlers.ExamSession.SessionStatus)
		studentAPI.POST("/exams/verify-face/:sessionId", verifyLimiter.Middleware(), handlers.ExamSession.VerifyFace)

		studentAPI.POST("/sessions/:sessionId/start", handlers.ExamSession.Start)
		studentAPI.POST("/sessions/:sessionId/finish", handlers.ExamSession.Finish)
		studentAPI.POST("/sessions/:sessionId/violations", handlers.ExamSession.LogViolation)
	}

	// ─── 3. Staff Group (JWT, instructor/admin role) ───────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireAuth(authService), middleware.RequireStaff())
	{
		staffAPI.GET("/exam-requests/pending", handlers.ExamRequest.ListPending)
		staffAPI.POST("/exam-requests/:requestId/approve", handlers.ExamRequest.Approve)
		staffAPI.POST("/exam-requests/:requestId/reject", handlers.ExamRequest.Reject)

		staffAPI.POST("/exam-sets", handlers.ExamSet.Create)
		staffAPI.GET("/exam-sets/:setId", handlers.ExamSet.Get)
		staffAPI.POST("/exam-sets/:setId/ready", handlers.ExamSet.MarkReady)
		staffAPI.GET("/courses/:courseId/exam-sets", handlers.ExamSet.ListByCourse)

		staffAPI.POST("/exam-sets/:setId/questions", handlers.Question.Add)
		staffAPI.GET("/exam-sets/:setId/questions", handlers.Question.ListBySet)
		staffAPI.PUT("/questions/:questionId", handlers.Question.Update)
		staffAPI.DELETE("/questions/:questionId", handlers.Question.Delete)

		staffAPI.GET("/exam-sets/:setId/candidates", handlers.Assignment.Candidates)
		staffAPI.POST("/exam-sets/:setId/assign", handlers.Assignment.Assign)
		staffAPI.GET("/exam-sets/:setId/assignments", handlers.Assignment.ListBySet)
		staffAPI.POST("/exam-sets/:setId/assign-random", handlers.Assignment.AssignRandom)

		staffAPI.GET("/session-details/:examCode", handlers.ExamSession.Details)
	}

	// ─── 4. WebSocket Group (WS query-token auth) ──────────────────────
	wsAPI := router.Group("/ws/v1")
	wsAPI.Use(middleware.RequireWSAuth(authService))
	{
		wsAPI.GET("/staff/courses/:courseId/monitor", handlers.Monitor.MonitorCourse)
	}

	return router
}
