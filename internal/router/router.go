package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/config"
	"github.com/neuronalfit/assessment-backend/internal/handler"
	"github.com/neuronalfit/assessment-backend/internal/middleware"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Student       *handler.StudentHandler
	Session       *handler.SessionHandler
	Analysis      *handler.AnalysisHandler
	Questionnaire *handler.QuestionnaireHandler
	System        *handler.SystemHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the background work of the middlewares (rate limiter cleanup).
func SetupRouter(
	ctx context.Context,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(ctx, 30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.GET("/me", middleware.RequireEvaluatorJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Evaluator Group (JWT) ──────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireEvaluatorJWT(authService))
	{
		// Questionnaire catalog, immutable for the lifetime of a deployment.
		api.GET("/questionnaire", middleware.CacheControl(time.Hour), handlers.Questionnaire.GetCatalog)
		api.GET("/questionnaire/domains/:domain", middleware.CacheControl(time.Hour), handlers.Questionnaire.GetDomain)

		// Students
		api.GET("/students", handlers.Student.ListStudents)
		api.POST("/students", handlers.Student.CreateStudent)
		api.GET("/students/:id", handlers.Student.GetStudent)
		api.PUT("/students/:id", handlers.Student.UpdateStudent)
		api.GET("/students/:id/sessions", handlers.Student.ListSessions)
		api.GET("/students/:id/progress", handlers.Analysis.GetProgress)

		// Sessions
		api.POST("/sessions", handlers.Session.CreateSession)
		api.GET("/sessions/:id", handlers.Session.GetSession)
		api.POST("/sessions/:id/start", handlers.Session.StartSession)
		api.POST("/sessions/:id/responses", handlers.Session.RecordResponse)
		api.POST("/sessions/:id/complete", handlers.Session.CompleteSession)
		api.POST("/sessions/:id/cancel", handlers.Session.CancelSession)

		// Analysis
		api.GET("/sessions/:id/report", handlers.Analysis.GetReport)
		api.GET("/sessions/:id/analysis", handlers.Analysis.GetAnalysis)
	}

	// ─── 3. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireEvaluatorJWT(authService),
		middleware.RequireRole(model.RoleAdmin),
	)
	{
		adminAPI.GET("/system/status", handlers.System.GetStatus)
	}

	return router
}
