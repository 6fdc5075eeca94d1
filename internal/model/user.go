// Package model defines database models
package model

import "time"

type User struct {
	ID              string `gorm:"primaryKey;size:16"`
	Name            string `gorm:"size:255;not null"`
	Email           string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string `gorm:"not null"`
	EmailVerifiedAt *time.Time
	// Rotated whenever the password changes so any long-lived
	// "remember me" credential derived from it stops working
	RememberToken string `gorm:"size:100"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	AccessTokens []AccessToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Posts        []Post        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// OwnsPost reports whether the user is the author of p
func (u *User) OwnsPost(p *Post) bool {
	return p != nil && p.UserID == u.ID
}
