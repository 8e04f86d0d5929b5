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
	"techblog/internal/services"
)

// EngagementHandler serves likes, reactions and shares. Every write updates
// the counter column and the per-user row in one transaction so the two can
// never drift.
type EngagementHandler struct{}

func NewEngagementHandler() *EngagementHandler {
	return &EngagementHandler{}
}

// Like toggles the caller's like on a post (POST /api/posts/:id/like).
func (h *EngagementHandler) Like(c *gin.Context) {
	post, ok := findEngagedPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	liked := false
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, user.ID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(post).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if err := tx.Create(&models.PostLike{PostID: post.ID, UserID: user.ID}).Error; err != nil {
				return err
			}
			if err := tx.Model(post).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			return services.NotifyLike(tx, user, post)
		default:
			return err
		}
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update like")
		return
	}

	var fresh models.Post
	if err := db.DB.First(&fresh, post.ID).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	OK(c, http.StatusOK, gin.H{
		"likesCount": fresh.LikesCount,
		"userLiked":  liked,
	})
}

// React sets, switches or clears the caller's reaction
// (POST /api/posts/:id/react). Sending the kind the user already holds
// removes it; a different kind replaces the old one.
func (h *EngagementHandler) React(c *gin.Context) {
	post, ok := findEngagedPost(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}
	if !models.ValidReaction(req.Type) {
		Fail(c, http.StatusBadRequest, "Unknown reaction type: "+req.Type)
		return
	}

	userReaction := ""
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", post.ID, user.ID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			userReaction = req.Type
			if err := tx.Create(&models.PostReaction{
				PostID: post.ID, UserID: user.ID, Type: req.Type,
			}).Error; err != nil {
				return err
			}
			col := models.ReactionColumn(req.Type)
			if err := tx.Model(post).
				UpdateColumn(col, gorm.Expr(col+" + 1")).Error; err != nil {
				return err
			}
			return services.NotifyReaction(tx, user, post, req.Type)

		case err != nil:
			return err

		case existing.Type == req.Type:
			// Same kind again clears the reaction.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			col := models.ReactionColumn(req.Type)
			return tx.Model(post).
				UpdateColumn(col, gorm.Expr(col+" - 1")).Error

		default:
			userReaction = req.Type
			oldCol := models.ReactionColumn(existing.Type)
			newCol := models.ReactionColumn(req.Type)
			if err := tx.Model(&existing).Update("type", req.Type).Error; err != nil {
				return err
			}
			if err := tx.Model(post).
				UpdateColumn(oldCol, gorm.Expr(oldCol+" - 1")).Error; err != nil {
				return err
			}
			if err := tx.Model(post).
				UpdateColumn(newCol, gorm.Expr(newCol+" + 1")).Error; err != nil {
				return err
			}
			return services.NotifyReaction(tx, user, post, req.Type)
		}
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update reaction")
		return
	}

	var fresh models.Post
	if err := db.DB.First(&fresh, post.ID).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	OK(c, http.StatusOK, gin.H{
		"reactions":    fresh.Reactions,
		"userReaction": userReaction,
	})
}

// Reactions returns the tallies plus the caller's own state when
// authenticated (GET /api/posts/:id/reactions).
func (h *EngagementHandler) Reactions(c *gin.Context) {
	post, ok := findEngagedPost(c)
	if !ok {
		return
	}

	data := gin.H{
		"reactions":  post.Reactions,
		"likesCount": post.LikesCount,
	}
	if user := middleware.CurrentUser(c); user != nil {
		var reaction models.PostReaction
		if err := db.DB.Where("post_id = ? AND user_id = ?", post.ID, user.ID).
			First(&reaction).Error; err == nil {
			data["userReaction"] = reaction.Type
		} else {
			data["userReaction"] = ""
		}
		var likes int64
		db.DB.Model(&models.PostLike{}).
			Where("post_id = ? AND user_id = ?", post.ID, user.ID).Count(&likes)
		data["userLiked"] = likes > 0
	}
	OK(c, http.StatusOK, data)
}

// Share records a share event (POST /api/posts/:id/share). Anonymous shares
// still count; authenticated non-authors also notify the post author.
func (h *EngagementHandler) Share(c *gin.Context) {
	post, ok := findEngagedPost(c)
	if !ok {
		return
	}

	// An absent or malformed body counts as an untagged share.
	var req ShareRequest
	_ = c.ShouldBindJSON(&req)
	platform := models.NormalizePlatform(req.Platform)

	user := middleware.CurrentUser(c)
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.PostShare{PostID: post.ID, Platform: platform}).Error; err != nil {
			return err
		}
		if err := tx.Model(post).
			UpdateColumn("share_count", gorm.Expr("share_count + 1")).Error; err != nil {
			return err
		}
		if user != nil {
			return services.NotifyShare(tx, user, post, platform)
		}
		return nil
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not record share")
		return
	}

	var fresh models.Post
	if err := db.DB.First(&fresh, post.ID).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	OK(c, http.StatusOK, gin.H{"shareCount": fresh.ShareCount, "platform": platform})
}

// Shares returns the per-platform share tallies (GET /api/posts/:id/shares).
func (h *EngagementHandler) Shares(c *gin.Context) {
	post, ok := findEngagedPost(c)
	if !ok {
		return
	}

	type platformCount struct {
		Platform string
		Count    int64
	}
	var rows []platformCount
	err := db.DB.Model(&models.PostShare{}).
		Select("platform, COUNT(*) as count").
		Where("post_id = ?", post.ID).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	platforms := gin.H{}
	for _, p := range models.SharePlatforms {
		platforms[p] = int64(0)
	}
	for _, row := range rows {
		platforms[row.Platform] = row.Count
	}
	OK(c, http.StatusOK, gin.H{
		"shareCount": post.ShareCount,
		"platforms":  platforms,
	})
}

// findEngagedPost loads the published post targeted by an engagement route.
func findEngagedPost(c *gin.Context) (*models.Post, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid post id")
		return nil, false
	}
	var post models.Post
	if err := db.DB.First(&post, "id = ? AND status = ?", id, models.StatusPublished).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "Post not found")
		} else {
			Fail(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &post, true
}
