package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"publisher-platform/config"
	"publisher-platform/handlers"
	"publisher-platform/helper"
	"publisher-platform/logger"
	"publisher-platform/middleware"
	"publisher-platform/models"
	"publisher-platform/repositories"
	"publisher-platform/services"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	db := config.InitDB(cfg.Database, config.IdentityModels()...)

	userRepo := repositories.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	tokens := services.NewTokenService(cfg.JWT)
	httpHelper := helper.NewHTTPHelper()
	authHandler := handlers.NewAuthHandler(authService, tokens, httpHelper)

	if err := authService.EnsureDefaults(cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default roles and admin user")
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.Auth(tokens), authHandler.Me)
		}

		roles := v1.Group("/roles")
		roles.Use(middleware.Auth(tokens), middleware.RequireRole(models.RoleAdmin))
		{
			roles.POST("", authHandler.CreateRole)
			roles.POST("/assign", authHandler.AssignRole)
		}
	}

	log.Info().Str("port", cfg.Port).Msg("auth API starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
