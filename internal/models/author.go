package models

import (
	"time"
)

// AuthorProfile extends a User with the public-author fields (website and
// social links). The original design kept a parallel Author collection with
// its own name/email; that redundancy is collapsed here onto the User row,
// keyed one-to-one by UserID.
type AuthorProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Website   string    `json:"website"`
	Twitter   string    `json:"twitter"`
	Facebook  string    `json:"facebook"`
	LinkedIn  string    `json:"linkedin"`
	Instagram string    `json:"instagram"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorView is the joined shape returned by /api/authors: profile extension
// plus the identity fields that live on the User row.
type AuthorView struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
	Website   string `json:"website"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
}

func (p *AuthorProfile) View(u *User) AuthorView {
	return AuthorView{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Website:   p.Website,
		Twitter:   p.Twitter,
		Facebook:  p.Facebook,
		LinkedIn:  p.LinkedIn,
		Instagram: p.Instagram,
	}
}
