package model

import "time"

// Migration records a data migration that has already been applied
type Migration struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}
