package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"publisher-platform/config"
	"publisher-platform/handlers"
	"publisher-platform/helper"
	"publisher-platform/logger"
	"publisher-platform/middleware"
	"publisher-platform/repositories"
	"publisher-platform/services"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	db := config.InitDB(cfg.Database, config.ContentModels()...)

	articleRepo := repositories.NewArticleRepository(db)
	articleService := services.NewArticleService(articleRepo)
	tokens := services.NewTokenService(cfg.JWT)
	httpHelper := helper.NewHTTPHelper()
	articleHandler := handlers.NewArticleHandler(articleService, httpHelper)

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
		articles := v1.Group("/articles")
		{
			// Plain reads are public; every mutation requires a valid
			// bearer token and the ownership/role check.
			articles.GET("", articleHandler.GetArticles)
			articles.GET("/:id", articleHandler.GetArticle)
			articles.GET("/:id/comments", articleHandler.GetComments)

			protected := articles.Group("")
			protected.Use(middleware.Auth(tokens))
			{
				protected.POST("", articleHandler.CreateArticle)
				protected.PUT("/:id", articleHandler.UpdateArticle)
				protected.DELETE("/:id", articleHandler.DeleteArticle)
				protected.POST("/:id/comments", articleHandler.AddComment)
			}
		}
	}

	log.Info().Str("port", cfg.Port).Msg("content API starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
