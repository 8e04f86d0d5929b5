package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"techblog/internal/config"
	"techblog/internal/db"
	"techblog/internal/handlers"
	"techblog/internal/middleware"
	"techblog/internal/models"
)

// loginRateLimit allows this many attempts per IP per window.
const (
	loginRateLimit  = 5
	loginRateWindow = time.Minute
)

// RegisterRoutes wires every endpoint onto the engine.
func RegisterRoutes(r *gin.Engine) {
	store := cookie.NewStore([]byte(config.GlobalConfig.Session.Secret))
	r.Use(sessions.Sessions("techblog_session", store))

	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	engagementHandler := handlers.NewEngagementHandler()
	commentHandler := handlers.NewCommentHandler()
	authorHandler := handlers.NewAuthorHandler()
	notificationHandler := handlers.NewNotificationHandler()
	uploadHandler := handlers.NewUploadHandler()

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login",
			middleware.LoginRateLimiter(config.RedisClient, loginRateLimit, loginRateWindow),
			authHandler.Login)
		auth.GET("/me", middleware.Protect(), authHandler.Me)
		auth.GET("/logout", middleware.Protect(), authHandler.Logout)
		auth.PUT("/update-profile", middleware.Protect(), authHandler.UpdateProfile)
		auth.PUT("/change-password", middleware.Protect(), authHandler.ChangePassword)
		auth.POST("/upload-avatar", middleware.Protect(), authHandler.UploadAvatar)
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", middleware.LoadUser(), postHandler.List)
		posts.GET("/:id", middleware.LoadUser(), postHandler.Get)
		posts.GET("/author/:authorId", middleware.LoadUser(), postHandler.ListByAuthor)
		posts.POST("", middleware.Protect(),
			middleware.Authorize(models.RoleAuthor, models.RoleAdmin), postHandler.Create)
		posts.PUT("/:id", middleware.Protect(),
			middleware.Authorize(models.RoleAuthor, models.RoleAdmin), postHandler.Update)
		posts.DELETE("/:id", middleware.Protect(),
			middleware.Authorize(models.RoleAuthor, models.RoleAdmin), postHandler.Delete)

		posts.POST("/:id/like", middleware.Protect(), engagementHandler.Like)
		posts.POST("/:id/react", middleware.Protect(), engagementHandler.React)
		posts.GET("/:id/reactions", middleware.LoadUser(), engagementHandler.Reactions)
		posts.POST("/:id/share", middleware.LoadUser(), engagementHandler.Share)
		posts.GET("/:id/shares", engagementHandler.Shares)

		posts.GET("/:id/comments", commentHandler.ListForPost)
		posts.POST("/:id/comments", middleware.Protect(), commentHandler.Create)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/:id", commentHandler.Get)
		comments.PUT("/:id", middleware.Protect(), commentHandler.Update)
		comments.DELETE("/:id", middleware.Protect(), commentHandler.Delete)
		comments.PUT("/:id/approve", middleware.Protect(),
			middleware.Authorize(models.RoleAdmin), commentHandler.Approve)
	}

	authors := api.Group("/authors")
	{
		authors.GET("", authorHandler.List)
		authors.GET("/:id", authorHandler.Get)
		authors.POST("", middleware.Protect(),
			middleware.Authorize(models.RoleAdmin), authorHandler.Create)
		authors.GET("/profile/me", middleware.Protect(), authorHandler.Me)
		authors.PUT("/profile/me", middleware.Protect(), authorHandler.UpdateMe)
		authors.PUT("/:id", middleware.Protect(),
			middleware.Authorize(models.RoleAdmin), authorHandler.Update)
		authors.DELETE("/:id", middleware.Protect(),
			middleware.Authorize(models.RoleAdmin), authorHandler.Delete)
	}

	notifications := api.Group("/notifications", middleware.Protect())
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	upload := api.Group("/upload", middleware.Protect())
	{
		upload.POST("", uploadHandler.Upload)
		upload.DELETE("/:deleteHash", uploadHandler.Delete)
	}
}
