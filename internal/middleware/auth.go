package middleware

import (
	"net/http"
	"strings"

	"techblog/internal/auth"
	"techblog/internal/db"
	"techblog/internal/models"

	"github.com/gin-gonic/gin"
)

const CurrentUserKey = "current_user"

// TokenCookie is the httpOnly cookie the auth handlers set alongside the
// response body token.
const TokenCookie = "token"

// extractToken pulls the JWT from the Authorization header or, failing that,
// from the auth cookie.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// loadUserFromToken decodes the token and re-fetches the User row, so a
// deleted account is rejected even while its token is still unexpired.
func loadUserFromToken(tokenStr string) *models.User {
	claims, err := auth.ParseToken(tokenStr)
	if err != nil {
		return nil
	}
	var user models.User
	if err := db.DB.First(&user, claims.UserID).Error; err != nil {
		return nil
	}
	return &user
}

// Protect rejects the request with 401 unless a valid token identifies an
// existing user; the user is stored in the context for the handlers.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this resource",
			})
			return
		}
		user := loadUserFromToken(tokenStr)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this resource",
			})
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// LoadUser is the optional variant of Protect for routes that behave
// differently for authenticated callers (share tracking, reaction state)
// but must not reject anonymous ones.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := extractToken(c); tokenStr != "" {
			if user := loadUserFromToken(tokenStr); user != nil {
				c.Set(CurrentUserKey, user)
			}
		}
		c.Next()
	}
}

// Authorize allows the request through only when the authenticated user's
// role is in the allowed set. Must run after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet(CurrentUserKey).(*models.User)
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Role " + user.Role + " is not authorized to access this resource",
		})
	}
}

// CurrentUser returns the authenticated user, or nil under LoadUser when the
// request is anonymous.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		return v.(*models.User)
	}
	return nil
}
