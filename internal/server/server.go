package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"groundtruth/internal/handler"
	"groundtruth/internal/middleware"
	"groundtruth/internal/nlc"
	"groundtruth/internal/repository"
	"groundtruth/internal/service"
)

// Deps are the constructed collaborators the router wires together.
type Deps struct {
	Auth       service.AuthService
	Classes    *repository.ClassRepository
	Texts      *repository.TextRepository
	Content    *repository.ContentRepository
	Classifier *nlc.Client
	Logger     *zap.Logger
}

type Server struct {
	router *gin.Engine
	log    *logrus.Logger
}

// NewServer builds the router and registers every route.
func NewServer(deps Deps, log *logrus.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		log:    log,
	}

	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Logger)
	classHandler := handler.NewClassHandler(deps.Classes, deps.Logger)
	textHandler := handler.NewTextHandler(deps.Texts, deps.Logger)
	contentHandler := handler.NewContentHandler(deps.Content, deps.Logger)
	classifierHandler := handler.NewClassifierHandler(deps.Classifier, deps.Content, deps.Logger)

	authRequired := middleware.Auth(deps.Auth, deps.Logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/authenticate")
	authGroup.POST("", authHandler.Login)
	authGroup.GET("", authRequired, authHandler.Status)
	authGroup.POST("/logout", authRequired, authHandler.Logout)

	// Tenant-scoped resource routes
	tenantGroup := s.router.Group("/api/:tenant")
	tenantGroup.Use(authRequired, middleware.TenantGuard())
	{
		tenantGroup.GET("/classes", classHandler.Query)
		tenantGroup.POST("/classes", classHandler.Create)
		tenantGroup.PUT("/classes/:id", classHandler.Update)
		tenantGroup.DELETE("/classes/:id", classHandler.Delete)

		tenantGroup.GET("/texts", textHandler.Query)
		tenantGroup.POST("/texts", textHandler.Create)
		tenantGroup.DELETE("/texts", textHandler.DeleteAll)
		tenantGroup.PATCH("/texts/:id", textHandler.Patch)
		tenantGroup.DELETE("/texts/:id", textHandler.Delete)

		tenantGroup.GET("/content", contentHandler.Export)
		tenantGroup.POST("/content", contentHandler.Import)

		tenantGroup.GET("/classifiers", classifierHandler.List)
		tenantGroup.POST("/classifiers", classifierHandler.Train)
		tenantGroup.GET("/classifiers/:id", classifierHandler.Status)
		tenantGroup.DELETE("/classifiers/:id", classifierHandler.Remove)
		tenantGroup.POST("/classifiers/:id/classify", classifierHandler.Classify)
	}

	// Unmatched routes answer a minimal JSON 404; there is no view layer to
	// fall back from.
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound})
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
