package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"publisher-platform/config"
	"publisher-platform/logger"
	"publisher-platform/middleware"
	"publisher-platform/webapp"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	timeout := time.Duration(cfg.WebApp.RequestTimeout) * time.Second
	authClient := webapp.NewAuthClient(cfg.WebApp.AuthAPIBaseURL, timeout)
	articleClient := webapp.NewArticleClient(cfg.WebApp.ContentAPIBaseURL, timeout)
	pages := webapp.NewPageHandler(authClient, articleClient)

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.String(http.StatusInternalServerError, "something went wrong")
	}))

	store := cookie.NewStore([]byte(cfg.WebApp.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 8 * 60 * 60})
	router.Use(sessions.Sessions("publisher_session", store))

	router.LoadHTMLGlob("webapp/templates/*.tmpl")

	router.GET("/login", pages.LoginPage)
	router.POST("/login", pages.Login)
	router.POST("/register", pages.Register)
	router.GET("/logout", pages.Logout)

	router.GET("/", pages.Index)
	router.GET("/articles/manage", pages.Manage)
	router.GET("/articles/new", pages.CreatePage)
	router.POST("/articles/new", pages.Create)
	router.GET("/articles/:id", pages.Details)
	router.POST("/articles/:id/comments", pages.AddComment)
	router.GET("/articles/:id/edit", pages.EditPage)
	router.POST("/articles/:id/edit", pages.Edit)
	router.POST("/articles/:id/delete", pages.Delete)

	log.Info().Str("port", cfg.Port).Msg("web front-end starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
