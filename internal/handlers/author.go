package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techblog/internal/db"
	"techblog/internal/middleware"
	"techblog/internal/models"
)

// AuthorHandler serves the public author directory. Identity fields live on
// the User row; the profile row adds the website and social links.
type AuthorHandler struct{}

func NewAuthorHandler() *AuthorHandler {
	return &AuthorHandler{}
}

// List returns every author profile joined with its user (GET /api/authors).
func (h *AuthorHandler) List(c *gin.Context) {
	var profiles []models.AuthorProfile
	if err := db.DB.Preload("User").Order("created_at ASC").Find(&profiles).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]models.AuthorView, 0, len(profiles))
	for i := range profiles {
		views = append(views, profiles[i].View(&profiles[i].User))
	}
	OK(c, http.StatusOK, gin.H{"authors": views, "count": len(views)})
}

// Get returns one author profile (GET /api/authors/:id).
func (h *AuthorHandler) Get(c *gin.Context) {
	profile, ok := h.findProfile(c)
	if !ok {
		return
	}
	OK(c, http.StatusOK, profile.View(&profile.User))
}

// Me returns the caller's own author profile (GET /api/authors/profile/me),
// creating an empty one on first access.
func (h *AuthorHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profile, err := h.getOrCreate(user.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	OK(c, http.StatusOK, profile.View(user))
}

// UpdateMe updates the caller's profile and the user-held fields it overlaps
// (PUT /api/authors/profile/me).
func (h *AuthorHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req AuthorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	profile, err := h.getOrCreate(user.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	userUpdates := map[string]interface{}{}
	if req.Bio != "" {
		userUpdates["bio"] = req.Bio
	}
	if req.Avatar != "" {
		userUpdates["avatar"] = req.Avatar
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(user).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		return tx.Model(profile).Updates(map[string]interface{}{
			"website":   req.Website,
			"twitter":   req.Twitter,
			"facebook":  req.Facebook,
			"linked_in": req.LinkedIn,
			"instagram": req.Instagram,
		}).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update profile")
		return
	}
	OK(c, http.StatusOK, profile.View(user))
}

// Create adds a profile for an existing user (POST /api/authors), admin only.
func (h *AuthorHandler) Create(c *gin.Context) {
	var req CreateAuthorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	var user models.User
	if err := db.DB.First(&user, req.UserID).Error; err != nil {
		Fail(c, http.StatusNotFound, "User not found")
		return
	}
	var existing models.AuthorProfile
	if err := db.DB.Where("user_id = ?", req.UserID).First(&existing).Error; err == nil {
		Fail(c, http.StatusBadRequest, "Author profile already exists")
		return
	}

	profile := models.AuthorProfile{
		UserID:    req.UserID,
		Website:   req.Website,
		Twitter:   req.Twitter,
		Facebook:  req.Facebook,
		LinkedIn:  req.LinkedIn,
		Instagram: req.Instagram,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]interface{}{}
		if req.Bio != "" {
			userUpdates["bio"] = req.Bio
		}
		if req.Avatar != "" {
			userUpdates["avatar"] = req.Avatar
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&user).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create profile")
		return
	}
	OK(c, http.StatusCreated, profile.View(&user))
}

// Update edits any author profile (PUT /api/authors/:id), admin only.
func (h *AuthorHandler) Update(c *gin.Context) {
	profile, ok := h.findProfile(c)
	if !ok {
		return
	}

	var req AuthorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]interface{}{}
		if req.Bio != "" {
			userUpdates["bio"] = req.Bio
		}
		if req.Avatar != "" {
			userUpdates["avatar"] = req.Avatar
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&profile.User).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		return tx.Model(profile).Updates(map[string]interface{}{
			"website":   req.Website,
			"twitter":   req.Twitter,
			"facebook":  req.Facebook,
			"linked_in": req.LinkedIn,
			"instagram": req.Instagram,
		}).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update profile")
		return
	}
	OK(c, http.StatusOK, profile.View(&profile.User))
}

// Delete removes an author profile row (DELETE /api/authors/:id), admin only.
// The underlying user account stays.
func (h *AuthorHandler) Delete(c *gin.Context) {
	profile, ok := h.findProfile(c)
	if !ok {
		return
	}
	if err := db.DB.Delete(profile).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete profile")
		return
	}
	OK(c, http.StatusOK, gin.H{"message": "Author profile deleted"})
}

func (h *AuthorHandler) getOrCreate(userID uint) (*models.AuthorProfile, error) {
	var profile models.AuthorProfile
	err := db.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.AuthorProfile{UserID: userID}
		err = db.DB.Create(&profile).Error
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (h *AuthorHandler) findProfile(c *gin.Context) (*models.AuthorProfile, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid author id")
		return nil, false
	}
	var profile models.AuthorProfile
	if err := db.DB.Preload("User").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "Author not found")
		} else {
			Fail(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &profile, true
}
