package models

import (
	"time"
)

type NotificationType string

const (
	NotificationComment  NotificationType = "comment"  // new comment on your post
	NotificationReply    NotificationType = "reply"    // reply to your comment
	NotificationMention  NotificationType = "mention"  // mentioned in a comment
	NotificationLike     NotificationType = "like"     // like on your post
	NotificationReaction NotificationType = "reaction" // reaction on your post
	NotificationShare    NotificationType = "share"    // your post was shared
	NotificationFollow   NotificationType = "follow"   // reserved, never produced yet
	NotificationSystem   NotificationType = "system"
)

// Notification rows are created only as a side effect of another entity's
// write (comment, like, reaction, share) and read back by the recipient.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	RecipientID  uint             `gorm:"not null;index:idx_recipient_created,priority:1" json:"recipient_id"`
	Recipient    User             `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	SenderID     *uint            `gorm:"index" json:"sender_id"`
	Sender       *User            `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type         NotificationType `gorm:"size:20;not null" json:"type"`
	PostID       *uint            `gorm:"index" json:"post_id"`
	CommentID    *uint            `json:"comment_id"`
	Content      string           `gorm:"type:text;not null" json:"content"`
	Link         string           `json:"link"`
	Read         bool             `gorm:"default:false;index" json:"read"`
	ReactionType *string          `gorm:"size:20" json:"reaction_type,omitempty"`
	CreatedAt    time.Time        `gorm:"index:idx_recipient_created,priority:2,sort:desc" json:"created_at"`
}
