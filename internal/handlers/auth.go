package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techblog/internal/auth"
	"techblog/internal/config"
	"techblog/internal/db"
	"techblog/internal/metrics"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/services"
	"techblog/internal/utils"
)

// AuthHandler serves registration, login and account management.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// sendTokenResponse issues the JWT both in the body and as an httpOnly
// cookie, so browser clients work without touching localStorage.
func sendTokenResponse(c *gin.Context, user *models.User, code int) {
	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	maxAge := int(config.GlobalConfig.JWT.Expire)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", false, true)
	c.JSON(code, gin.H{
		"success": true,
		"token":   token,
		"data":    user,
	})
}

// Register creates an account (POST /api/auth/register).
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncRegister("invalid")
		BindFail(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := db.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		metrics.IncRegister("duplicate")
		Fail(c, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hash,
		Role:     role,
		Avatar:   models.DefaultAvatar,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		metrics.IncRegister("error")
		Fail(c, http.StatusInternalServerError, "Could not create user")
		return
	}

	metrics.IncRegister("ok")
	sendTokenResponse(c, &user, http.StatusCreated)
}

// Login verifies credentials (POST /api/auth/login).
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("invalid")
		BindFail(c, err)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		metrics.IncLogin("failed")
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		metrics.IncLogin("failed")
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	metrics.IncLogin("ok")
	sendTokenResponse(c, &user, http.StatusOK)
}

// Me returns the authenticated account (GET /api/auth/me).
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	OK(c, http.StatusOK, user)
}

// Logout clears the auth cookie (POST /api/auth/logout). The token itself
// stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	OK(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// UpdateProfile updates name, bio and avatar (PUT /api/auth/update-profile).
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			Fail(c, http.StatusInternalServerError, "Could not update profile")
			return
		}
	}
	OK(c, http.StatusOK, user)
}

// ChangePassword rotates the password after verifying the current one
// (PUT /api/auth/change-password). A fresh token is issued.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		Fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not hash password")
		return
	}
	if err := db.DB.Model(user).Update("password", hash).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update password")
		return
	}
	sendTokenResponse(c, user, http.StatusOK)
}

// UploadAvatar accepts a multipart image, pushes it to the image host and
// stores the hosted URL (PUT /api/auth/upload-avatar).
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		Fail(c, http.StatusBadRequest, "Please provide an image file")
		return
	}
	defer file.Close()

	if msg := checkImageUpload(header); msg != "" {
		Fail(c, http.StatusBadRequest, msg)
		return
	}

	result, err := services.UploadImage(file, header)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Image upload failed")
		return
	}
	if err := db.DB.Model(user).Update("avatar", result.URL).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update avatar")
		return
	}
	OK(c, http.StatusOK, gin.H{"avatar": result.URL})
}
