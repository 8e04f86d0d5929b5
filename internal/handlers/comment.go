package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techblog/internal/db"
	"techblog/internal/middleware"
	"techblog/internal/models"
	"techblog/internal/services"
)

// CommentHandler serves the comment tree under posts: one level of replies,
// approval moderation and the notification fan-out on create.
type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// CommentView is a comment with its author byline; top-level entries carry
// their direct replies.
type CommentView struct {
	models.Comment
	Author  models.UserSummary `json:"author"`
	Replies []CommentView      `json:"replies,omitempty"`
}

// ListForPost returns the approved top-level comments of a post with their
// replies (GET /api/posts/:id/comments).
func (h *CommentHandler) ListForPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	page := 1
	limit := defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxPageSize {
		limit = v
	}

	base := db.DB.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND is_approved = ?", postID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	var topLevel []models.Comment
	err = base.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&topLevel).Error
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]CommentView, 0, len(topLevel))
	for i := range topLevel {
		parent := &topLevel[i]
		view := CommentView{Comment: *parent, Author: parent.Author.Summary()}

		var replies []models.Comment
		err := db.DB.Preload("Author").
			Where("parent_id = ? AND is_approved = ?", parent.ID, true).
			Order("created_at ASC").
			Find(&replies).Error
		if err != nil {
			Fail(c, http.StatusInternalServerError, "Database error")
			return
		}
		for j := range replies {
			view.Replies = append(view.Replies, CommentView{
				Comment: replies[j],
				Author:  replies[j].Author.Summary(),
			})
		}
		views = append(views, view)
	}

	OK(c, http.StatusOK, gin.H{
		"comments": views,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// Create adds a comment or reply (POST /api/posts/:id/comments) and fans out
// the notifications inside the same transaction: post author, parent comment
// author and every @mentioned user, each at most once and never the sender.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid post id")
		return
	}
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Fail(c, http.StatusNotFound, "Post not found")
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}

	var parent *models.Comment
	if req.ParentComment != nil {
		var p models.Comment
		if err := db.DB.First(&p, *req.ParentComment).Error; err != nil {
			Fail(c, http.StatusNotFound, "Parent comment not found")
			return
		}
		if p.PostID != post.ID {
			Fail(c, http.StatusBadRequest, "Parent comment belongs to another post")
			return
		}
		parent = &p
	}

	comment := models.Comment{
		Content:    req.Content,
		PostID:     post.ID,
		AuthorID:   user.ID,
		ParentID:   req.ParentComment,
		IsApproved: true,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		notified := map[uint]bool{}
		if parent == nil {
			if err := services.NotifyComment(tx, user, &post, comment.ID); err != nil {
				return err
			}
			notified[post.AuthorID] = true
		} else {
			if err := services.NotifyReply(tx, user, &post, parent, comment.ID); err != nil {
				return err
			}
			notified[parent.AuthorID] = true
		}
		return services.NotifyMentions(tx, user, &post, comment.ID, comment.Content, notified)
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create comment")
		return
	}

	comment.Author = *user
	OK(c, http.StatusCreated, CommentView{Comment: comment, Author: user.Summary()})
}

// Get returns one comment with its direct replies (GET /api/comments/:id).
func (h *CommentHandler) Get(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}

	view := CommentView{Comment: *comment, Author: comment.Author.Summary()}
	if comment.ParentID == nil {
		var replies []models.Comment
		err := db.DB.Preload("Author").
			Where("parent_id = ? AND is_approved = ?", comment.ID, true).
			Order("created_at ASC").
			Find(&replies).Error
		if err != nil {
			Fail(c, http.StatusInternalServerError, "Database error")
			return
		}
		for i := range replies {
			view.Replies = append(view.Replies, CommentView{
				Comment: replies[i],
				Author:  replies[i].Author.Summary(),
			})
		}
	}
	OK(c, http.StatusOK, view)
}

// Update edits a comment's text (PUT /api/comments/:id), owner or admin only.
func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if comment.AuthorID != user.ID && user.Role != models.RoleAdmin {
		Fail(c, http.StatusForbidden, "Not authorized to update this comment")
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}
	if err := db.DB.Model(comment).Update("content", req.Content).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update comment")
		return
	}
	OK(c, http.StatusOK, CommentView{Comment: *comment, Author: comment.Author.Summary()})
}

// Delete removes a comment (DELETE /api/comments/:id). Deleting a top-level
// comment also removes its direct replies; deleting a reply touches nothing
// else.
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if comment.AuthorID != user.ID && user.Role != models.RoleAdmin {
		Fail(c, http.StatusForbidden, "Not authorized to delete this comment")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if comment.ParentID == nil {
			if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(comment).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete comment")
		return
	}
	OK(c, http.StatusOK, gin.H{"message": "Comment deleted"})
}

// Approve toggles moderation state (PUT /api/comments/:id/approve), admin only.
func (h *CommentHandler) Approve(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}

	var req ApproveCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindFail(c, err)
		return
	}
	if err := db.DB.Model(comment).Update("is_approved", req.IsApproved).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update comment")
		return
	}
	OK(c, http.StatusOK, CommentView{Comment: *comment, Author: comment.Author.Summary()})
}

func (h *CommentHandler) findComment(c *gin.Context) (*models.Comment, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid comment id")
		return nil, false
	}
	var comment models.Comment
	if err := db.DB.Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "Comment not found")
		} else {
			Fail(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &comment, true
}
