package model

import "time"

type Post struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;size:16;not null"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User  User   `gorm:"foreignKey:UserID"`
	Likes []Like `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

type Like struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	PostID    uint   `gorm:"uniqueIndex:idx_like_post_user;not null"`
	UserID    string `gorm:"uniqueIndex:idx_like_post_user;size:16;not null"`
	CreatedAt time.Time
}
