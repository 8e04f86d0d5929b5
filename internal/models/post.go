package models

import (
	"math"
	"strings"
	"time"
)

// Post categories form a closed enum; anything else is rejected at validation.
var Categories = []string{
	"Microcontrollers",
	"Programming",
	"Robotics",
	"Artificial Intelligence",
	"IoT",
	"Hardware",
	"Software",
	"Other",
}

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// DefaultCoverImage is used when a post is created without a cover.
const DefaultCoverImage = "https://i.imgur.com/default-post-cover.jpg"

// Reaction kinds. Each user holds at most one per post.
const (
	ReactionThumbsUp = "thumbsUp"
	ReactionHeart    = "heart"
	ReactionClap     = "clap"
	ReactionWow      = "wow"
	ReactionSad      = "sad"
)

var ReactionKinds = []string{ReactionThumbsUp, ReactionHeart, ReactionClap, ReactionWow, ReactionSad}

// Share platforms; unknown input falls back to "other".
const (
	PlatformFacebook = "facebook"
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformWhatsApp = "whatsapp"
	PlatformOther    = "other"
)

var SharePlatforms = []string{PlatformFacebook, PlatformTwitter, PlatformLinkedIn, PlatformWhatsApp, PlatformOther}

// ReactionCounts carries one counter column per reaction kind. The counters
// must always equal the tallies of PostReaction rows by kind; every write
// path updates both inside one transaction.
type ReactionCounts struct {
	ThumbsUp int `gorm:"default:0" json:"thumbsUp"`
	Heart    int `gorm:"default:0" json:"heart"`
	Clap     int `gorm:"default:0" json:"clap"`
	Wow      int `gorm:"default:0" json:"wow"`
	Sad      int `gorm:"default:0" json:"sad"`
}

type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"size:100;not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Excerpt    string `gorm:"size:200;not null" json:"excerpt"`
	CoverImage string `json:"cover_image"`
	Category   string `gorm:"size:40;not null;index" json:"category"`
	// Tags are stored comma-separated; TagList splits them for responses.
	Tags     string `gorm:"size:255" json:"-"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Status   string `gorm:"size:20;default:'published';index" json:"status"`
	// ReadTime is derived from the content word count on every write.
	ReadTime   int            `gorm:"default:1" json:"read_time"`
	LikesCount int            `gorm:"default:0" json:"likes_count"`
	Reactions  ReactionCounts `gorm:"embedded;embeddedPrefix:reaction_" json:"reactions"`
	ShareCount int            `gorm:"default:0" json:"share_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PostLike records one like per user per post.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_like_user_post" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReaction records the single reaction a user holds on a post.
type PostReaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_reaction_user_post" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_post" json:"user_id"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// PostShare is an append-only share record tagged by platform.
type PostShare struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Platform  string    `gorm:"size:20;not null" json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

// wordsPerMinute is the average reading speed used to derive ReadTime.
const wordsPerMinute = 200

// ComputeReadTime derives the estimated reading minutes from the content word
// count. It is called explicitly by the write path before persisting, never
// from a persistence hook, so the derivation is visible and testable.
func ComputeReadTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 1
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// ValidCategory reports whether c is in the closed category enum.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// ValidReaction reports whether t is a known reaction kind.
func ValidReaction(t string) bool {
	for _, k := range ReactionKinds {
		if k == t {
			return true
		}
	}
	return false
}

// NormalizePlatform maps unknown share platforms to "other".
func NormalizePlatform(p string) string {
	for _, known := range SharePlatforms {
		if known == p {
			return p
		}
	}
	return PlatformOther
}

// TagList splits the stored comma-separated tags, dropping empties.
func (p *Post) TagList() []string {
	return SplitTags(p.Tags)
}

// SplitTags turns a comma-separated tag string into a trimmed slice.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags, normalizing whitespace.
func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

// Count returns the counter for one reaction kind.
func (r *ReactionCounts) Count(kind string) int {
	switch kind {
	case ReactionThumbsUp:
		return r.ThumbsUp
	case ReactionHeart:
		return r.Heart
	case ReactionClap:
		return r.Clap
	case ReactionWow:
		return r.Wow
	case ReactionSad:
		return r.Sad
	}
	return 0
}

// ReactionColumn maps a reaction kind to its counter column name.
func ReactionColumn(kind string) string {
	switch kind {
	case ReactionThumbsUp:
		return "reaction_thumbs_up"
	case ReactionHeart:
		return "reaction_heart"
	case ReactionClap:
		return "reaction_clap"
	case ReactionWow:
		return "reaction_wow"
	case ReactionSad:
		return "reaction_sad"
	}
	return ""
}
