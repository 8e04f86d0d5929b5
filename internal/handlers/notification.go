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
)

// NotificationHandler serves the recipient-scoped notification feed. Every
// query is filtered by the authenticated user; there is no cross-user access.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// NotificationView joins the sender byline onto the row.
type NotificationView struct {
	models.Notification
	Sender *models.UserSummary `json:"sender,omitempty"`
}

// List returns the caller's notifications, newest first
// (GET /api/notifications?unreadOnly=true&page=&limit=).
func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	page := 1
	limit := defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= maxPageSize {
		limit = v
	}

	query := db.DB.Model(&models.Notification{}).Where("recipient_id = ?", user.ID)
	if c.Query("unreadOnly") == "true" {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	var rows []models.Notification
	err := query.Preload("Sender").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}

	views := make([]NotificationView, 0, len(rows))
	for i := range rows {
		view := NotificationView{Notification: rows[i]}
		if rows[i].Sender != nil {
			s := rows[i].Sender.Summary()
			view.Sender = &s
		}
		views = append(views, view)
	}

	var unread int64
	db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", user.ID, false).Count(&unread)

	OK(c, http.StatusOK, gin.H{
		"notifications": views,
		"unreadCount":   unread,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// UnreadCount returns just the badge number (GET /api/notifications/unread-count).
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var unread int64
	if err := db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", user.ID, false).
		Count(&unread).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Database error")
		return
	}
	OK(c, http.StatusOK, gin.H{"unreadCount": unread})
}

// MarkRead flags one notification as read (PUT /api/notifications/:id/read).
// Only the recipient may touch it.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, ok := h.findOwn(c)
	if !ok {
		return
	}
	if err := db.DB.Model(notification).Update("read", true).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update notification")
		return
	}
	OK(c, http.StatusOK, notification)
}

// MarkAllRead flags every unread notification of the caller
// (PUT /api/notifications/read-all).
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	result := db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", user.ID, false).
		Update("read", true)
	if result.Error != nil {
		Fail(c, http.StatusInternalServerError, "Could not update notifications")
		return
	}
	OK(c, http.StatusOK, gin.H{"updated": result.RowsAffected})
}

// Delete removes one notification (DELETE /api/notifications/:id).
func (h *NotificationHandler) Delete(c *gin.Context) {
	notification, ok := h.findOwn(c)
	if !ok {
		return
	}
	if err := db.DB.Delete(notification).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete notification")
		return
	}
	OK(c, http.StatusOK, gin.H{"message": "Notification deleted"})
}

// findOwn loads the :id notification and enforces recipient ownership.
func (h *NotificationHandler) findOwn(c *gin.Context) (*models.Notification, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid notification id")
		return nil, false
	}
	var notification models.Notification
	if err := db.DB.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, "Notification not found")
		} else {
			Fail(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if notification.RecipientID != user.ID {
		Fail(c, http.StatusForbidden, "Not authorized to access this notification")
		return nil, false
	}
	return &notification, true
}
