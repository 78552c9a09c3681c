package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phishnews/newshub/app/auth"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, enableDebugAPI bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, enableDebugAPI)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, enableDebugAPI bool) {
	r.GET("/", handler.GetRoot)
	r.GET("/health", handler.GetHealth)

	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)

	r.GET("/news", handler.GetNews)
	r.POST("/news/save", handler.SaveNews)
	r.GET("/news/trending", handler.GetTrending)
	r.GET("/news/search", handler.SearchNews)
	r.GET("/news/personalized", authMiddleware(handler.authenticator), handler.GetPersonalized)

	r.POST("/rss/fetch", handler.FetchFeeds)
	r.GET("/location", handler.GetLocation)

	user := r.Group("/user")
	user.Use(authMiddleware(handler.authenticator))
	{
		user.GET("/profile", handler.GetProfile)
		user.POST("/preferences", handler.UpdatePreferences)
		user.POST("/history", handler.AddHistory)
		user.GET("/recently-viewed", handler.GetRecentlyViewed)
		user.POST("/bookmark", handler.Bookmark)
		user.POST("/unbookmark", handler.Unbookmark)
		user.GET("/bookmarks", handler.GetBookmarks)
		user.POST("/like", handler.Like)
		user.POST("/dislike", handler.Dislike)
		user.POST("/share", handler.Share)
	}

	// Development scaffolding, never mounted in production
	if enableDebugAPI {
		debug := r.Group("/debug")
		{
			debug.GET("/users/:email", handler.DebugGetUser)
			debug.DELETE("/users/:email", handler.DebugDeleteUser)
		}
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware validates the bearer token and stores the account email in
// the request context.
func authMiddleware(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authorization required",
				"message": "Provide a token in Authorization: Bearer <token>",
			})
			c.Abort()
			return
		}

		email, err := authenticator.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid token",
				"message": "The provided token is expired or not valid",
			})
			c.Abort()
			return
		}

		c.Set("email", email)
		c.Next()
	}
}

func currentEmail(c *gin.Context) string {
	return c.GetString("email")
}
