package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermodel "moviehub-backend/internal/domains/user/model"
	"moviehub-backend/internal/shared/middleware"
	"moviehub-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler(c))

		setupUserRoutes(api, c)
		setupProfileRoutes(api, c)
		setupMovieRoutes(api, c)
		setupArticleRoutes(api, c)
	}

	return router
}

func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	// Accounts are provisioned by admins; the request may carry a role.
	api.POST("/users", middleware.Auth(c.JWTManager), middleware.RequireRole(usermodel.RoleAdmin), c.UserHandler.Register)
	api.POST("/users/login", c.UserHandler.Login)

	user := api.Group("/user")
	user.Use(middleware.Auth(c.JWTManager))
	{
		user.GET("", c.UserHandler.Current)
		user.PUT("", c.UserHandler.Update)
	}
}

func setupProfileRoutes(api *gin.RouterGroup, c *container.Container) {
	profiles := api.Group("/profiles")
	{
		profiles.GET("/:username", middleware.OptionalAuth(c.JWTManager), c.UserHandler.GetProfile)
		profiles.POST("/:username/follow", middleware.Auth(c.JWTManager), c.UserHandler.Follow)
		profiles.DELETE("/:username/follow", middleware.Auth(c.JWTManager), c.UserHandler.Unfollow)
	}
}

func setupMovieRoutes(api *gin.RouterGroup, c *container.Container) {
	movies := api.Group("/movies")
	{
		movies.GET("", middleware.OptionalAuth(c.JWTManager), c.MovieHandler.List)
		movies.GET("/:id", middleware.OptionalAuth(c.JWTManager), c.MovieHandler.Get)

		movies.POST("", middleware.Auth(c.JWTManager), middleware.RequireRole(usermodel.RoleAdmin), c.MovieHandler.Create)
		movies.POST("/:id/like", middleware.Auth(c.JWTManager), c.MovieHandler.Like)
		movies.DELETE("/:id/like", middleware.Auth(c.JWTManager), c.MovieHandler.Unlike)

		movies.POST("/:id/articles", middleware.Auth(c.JWTManager), c.ReviewHandler.Create)
	}
}

func setupArticleRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/tags", c.ReviewHandler.ListTags)

	articles := api.Group("/articles")
	{
		articles.GET("", middleware.OptionalAuth(c.JWTManager), c.ReviewHandler.List)
		articles.GET("/feed", middleware.Auth(c.JWTManager), c.ReviewHandler.Feed)
		articles.GET("/:slug", middleware.OptionalAuth(c.JWTManager), c.ReviewHandler.Get)
		articles.PUT("/:slug", middleware.Auth(c.JWTManager), c.ReviewHandler.Update)
		articles.DELETE("/:slug", middleware.Auth(c.JWTManager), c.ReviewHandler.Delete)

		articles.POST("/:slug/favorite", middleware.Auth(c.JWTManager), c.ReviewHandler.Favorite)
		articles.DELETE("/:slug/favorite", middleware.Auth(c.JWTManager), c.ReviewHandler.Unfavorite)

		articles.GET("/:slug/comments", middleware.OptionalAuth(c.JWTManager), c.CommentHandler.List)
		articles.POST("/:slug/comments", middleware.Auth(c.JWTManager), c.CommentHandler.Create)
		articles.DELETE("/:slug/comments/:id", middleware.Auth(c.JWTManager), c.CommentHandler.Delete)
	}
}

// healthHandler reports liveness and database reachability.
func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
