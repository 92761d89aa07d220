package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chirp/auth"
	"chirp/handlers"
	"chirp/middleware"
)

func SetupRouter(api *handlers.API, tokens auth.TokenIssuer) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewIPRateLimiter(60, time.Minute)

	// Public auth routes
	public := router.Group("/api")
	public.Use(middleware.RateLimit(limiter))
	public.POST("/register", api.Register)
	public.POST("/login", api.Login)

	// Public queries. The feed resolves the viewer when a token is present
	// (FOLLOWING needs one) but serves anonymous readers otherwise.
	queries := router.Group("/api")
	queries.Use(middleware.OptionalAuth(tokens))
	queries.GET("/posts", api.GetPosts)
	queries.GET("/posts/lookup", api.GetPostsByIDs)
	queries.GET("/posts/:id", api.GetPost)
	queries.GET("/posts/:id/comments", api.GetComments)
	queries.GET("/comments/lookup", api.GetCommentsByIDs)
	queries.GET("/users/:username", api.GetUser)
	queries.GET("/search", api.SearchAll)
	queries.GET("/search/users", api.SearchUsers)

	// Protected mutations
	protected := router.Group("/api")
	protected.Use(middleware.RateLimit(limiter))
	protected.Use(middleware.RequireAuth(tokens))
	protected.POST("/posts", api.CreatePost)
	protected.PUT("/posts/:id", api.EditPost)
	protected.DELETE("/posts/:id", api.DeletePost)
	protected.POST("/posts/:id/like", api.LikePost)
	protected.DELETE("/posts/:id/like", api.UnlikePost)
	protected.POST("/comments", api.CreateComment)
	protected.PUT("/comments/:id", api.EditComment)
	protected.DELETE("/comments/:id", api.DeleteComment)
	protected.POST("/users/:username/follow", api.Follow)
	protected.DELETE("/users/:username/follow", api.Unfollow)
	protected.POST("/upload", api.UploadMedia)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
