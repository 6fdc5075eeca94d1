package model

import "time"

type PasswordResetToken struct {
	Email     string `gorm:"primaryKey;size:255"`
	TokenHash string `gorm:"size:64;not null"`
	CreatedAt time.Time
}
