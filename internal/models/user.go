package models

import (
	"time"
)

// Roles a User may hold. Role gates authorization in the route layer.
const (
	RoleUser   = "user"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

// DefaultAvatar is assigned at registration when no avatar is provided.
const DefaultAvatar = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=256&h=256&fit=facearea&facepad=2"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"`
	GoogleID  string    `gorm:"index" json:"google_id,omitempty"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether r is one of the closed role set.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAuthor || r == RoleAdmin
}

// UserSummary is the projection of a user joined into post/comment listings:
// just enough to render a byline without another lookup.
type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
