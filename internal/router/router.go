package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/handler"
	"github.com/dwiyanr/examflow/internal/middleware"
	"github.com/dwiyanr/examflow/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam *handler.ExamHandler
	WS   *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the join endpoint (per-IP, per minute).
	joinLimiter := middleware.NewRateLimiter(cfg.JoinRateLimit, time.Minute)

	// ─── 1. Candidate REST Group ───────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/exams", handlers.Exam.ListExams)
		api.POST("/exams/:exam_id/join", joinLimiter.Middleware(), handlers.Exam.JoinExam)
		api.GET("/exams/:exam_id/paper", handlers.Exam.GetPaper)
		api.GET("/exams/:exam_id/state", handlers.Exam.GetState)
		api.GET("/exams/:exam_id/results", handlers.Exam.GetResults)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	return router
}
