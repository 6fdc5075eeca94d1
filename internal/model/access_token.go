package model

import "time"

// AccessToken is a single issued bearer token. Only the SHA-256 of the
// secret is kept, the plaintext is handed out once at login.
type AccessToken struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	UserID     string `gorm:"index;size:16;not null"`
	Name       string `gorm:"size:255;not null"`
	TokenHash  string `gorm:"uniqueIndex;size:64;not null"`
	LastUsedAt *time.Time
	LastUsedIP *string `gorm:"size:45"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
