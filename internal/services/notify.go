package services

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"techblog/internal/metrics"
	"techblog/internal/models"
)

// mentionPattern matches @name tokens inside comment text.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// create persists one notification row. All fan-out goes through here so the
// metric stays accurate.
func create(tx *gorm.DB, n *models.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return err
	}
	metrics.IncNotification(string(n.Type))
	return nil
}

func postLink(postID uint) string {
	return fmt.Sprintf("/post/%d", postID)
}

// NotifyComment tells the post author about a new top-level comment. Writes
// nothing when the commenter is the author.
func NotifyComment(tx *gorm.DB, sender *models.User, post *models.Post, commentID uint) error {
	if sender.ID == post.AuthorID {
		return nil
	}
	return create(tx, &models.Notification{
		RecipientID: post.AuthorID,
		SenderID:    &sender.ID,
		Type:        models.NotificationComment,
		PostID:      &post.ID,
		CommentID:   &commentID,
		Content:     fmt.Sprintf("%s commented on your post \"%s\"", sender.Name, post.Title),
		Link:        postLink(post.ID),
	})
}

// NotifyReply tells the parent comment's author about a reply.
func NotifyReply(tx *gorm.DB, sender *models.User, post *models.Post, parent *models.Comment, replyID uint) error {
	if sender.ID == parent.AuthorID {
		return nil
	}
	return create(tx, &models.Notification{
		RecipientID: parent.AuthorID,
		SenderID:    &sender.ID,
		Type:        models.NotificationReply,
		PostID:      &post.ID,
		CommentID:   &replyID,
		Content:     fmt.Sprintf("%s replied to your comment on \"%s\"", sender.Name, post.Title),
		Link:        postLink(post.ID),
	})
}

// NotifyMentions scans comment text for @name tokens and notifies each
// matching user once. Names match case-insensitively and exactly; the sender
// and the users in skip (already notified as post or parent author) are
// excluded.
func NotifyMentions(tx *gorm.DB, sender *models.User, post *models.Post, commentID uint, content string, skip map[uint]bool) error {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true

		var user models.User
		err := tx.Where("LOWER(name) = ?", name).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return err
		}
		if user.ID == sender.ID || skip[user.ID] {
			continue
		}
		n := &models.Notification{
			RecipientID: user.ID,
			SenderID:    &sender.ID,
			Type:        models.NotificationMention,
			PostID:      &post.ID,
			CommentID:   &commentID,
			Content:     fmt.Sprintf("%s mentioned you in a comment on \"%s\"", sender.Name, post.Title),
			Link:        postLink(post.ID),
		}
		if err := create(tx, n); err != nil {
			return err
		}
	}
	return nil
}

// NotifyLike tells the post author someone liked their post.
func NotifyLike(tx *gorm.DB, sender *models.User, post *models.Post) error {
	if sender.ID == post.AuthorID {
		return nil
	}
	return create(tx, &models.Notification{
		RecipientID: post.AuthorID,
		SenderID:    &sender.ID,
		Type:        models.NotificationLike,
		PostID:      &post.ID,
		Content:     fmt.Sprintf("%s liked your post \"%s\"", sender.Name, post.Title),
		Link:        postLink(post.ID),
	})
}

// NotifyReaction tells the post author about a new or switched reaction.
func NotifyReaction(tx *gorm.DB, sender *models.User, post *models.Post, reactionType string) error {
	if sender.ID == post.AuthorID {
		return nil
	}
	return create(tx, &models.Notification{
		RecipientID:  post.AuthorID,
		SenderID:     &sender.ID,
		Type:         models.NotificationReaction,
		PostID:       &post.ID,
		Content:      fmt.Sprintf("%s reacted with %s to your post \"%s\"", sender.Name, reactionType, post.Title),
		Link:         postLink(post.ID),
		ReactionType: &reactionType,
	})
}

// NotifyShare tells the post author an authenticated user shared their post.
func NotifyShare(tx *gorm.DB, sender *models.User, post *models.Post, platform string) error {
	if sender.ID == post.AuthorID {
		return nil
	}
	return create(tx, &models.Notification{
		RecipientID: post.AuthorID,
		SenderID:    &sender.ID,
		Type:        models.NotificationShare,
		PostID:      &post.ID,
		Content:     fmt.Sprintf("%s shared your post \"%s\" on %s", sender.Name, post.Title, platform),
		Link:        postLink(post.ID),
	})
}
