// Package app wires services, handlers and routes together.
package app

import (
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/justsurfingit/jobtracker/internal/handlers"
	"github.com/justsurfingit/jobtracker/internal/middleware"
	"github.com/justsurfingit/jobtracker/internal/queue"
	"github.com/justsurfingit/jobtracker/internal/services"
	"github.com/justsurfingit/jobtracker/internal/storage"
	"gorm.io/gorm"
)

type ServiceContainer struct {
	Tokens     *auth.TokenService
	Users      *services.UserService
	Jobs       *services.JobService
	Resumes    *services.ResumeService
	Extraction *services.ExtractionService
	Dashboard  *services.DashboardService
	// LLM is nil when GEMINI_API_KEY is not set.
	LLM *services.LLMService
}

func NewServiceContainer(cfg *config.Config, db *gorm.DB, store storage.Storage, q queue.Queue, llm *services.LLMService) *ServiceContainer {
	return &ServiceContainer{
		Tokens:     auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Users:      services.NewUserService(db),
		Jobs:       services.NewJobService(db),
		Resumes:    services.NewResumeService(db, store, q, cfg.Storage.MaxSize),
		Extraction: services.NewExtractionService(db, store, q),
		Dashboard:  services.NewDashboardService(db, cfg.Location()),
		LLM:        llm,
	}
}

func SetupRouter(cfg *config.Config, db *gorm.DB, svc *ServiceContainer) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.IsProduction()))
	router.Use(middleware.Authenticate(svc.Tokens, svc.Users, cfg.Auth.CookieName))
	router.MaxMultipartMemory = 8 << 20

	RegisterRoutes(router, cfg, db, svc)
	return router
}

func RegisterRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, svc *ServiceContainer) {
	jobHandler := handlers.NewJobHandler(svc.Jobs, svc.LLM)
	resumeHandler := handlers.NewResumeHandler(svc.Resumes)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	profileHandler := handlers.NewProfileHandler(svc.Users)
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Tokens, handlers.SessionConfig{
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.SecureCookie,
	})

	router.GET("/up", handlers.HealthCheck(db))
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)
	router.DELETE("/logout", authHandler.Logout)

	authed := router.Group("/", middleware.RequireAuth())
	{
		authed.GET("", jobHandler.Index)
		authed.GET("dashboard", dashboardHandler.Show)

		jobs := authed.Group("jobs")
		jobs.GET("", jobHandler.Index)
		jobs.POST("", jobHandler.Create)
		jobs.GET("new", jobHandler.New)
		jobs.POST("extract", jobHandler.ParseJob)
		jobs.GET(":id", jobHandler.Show)
		jobs.GET(":id/edit", jobHandler.Edit)
		jobs.PATCH(":id", jobHandler.Update)
		jobs.PUT(":id", jobHandler.Update)
		jobs.DELETE(":id", jobHandler.Destroy)

		resumes := authed.Group("resumes")
		resumes.GET("", resumeHandler.Index)
		resumes.POST("", resumeHandler.Create)
		resumes.GET("new", resumeHandler.New)
		resumes.GET(":id", resumeHandler.Show)

		authed.GET("profile/edit", profileHandler.Edit)
		authed.PATCH("profile", profileHandler.Update)
	}
}
