package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/blog-api/internal/model"

	"gorm.io/gorm"
)

type SessionSummary struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	IPAddress       *string    `json:"ip_address"`
	LastUsed        *time.Time `json:"last_used"`
	CreatedAt       time.Time  `json:"created_at"`
	IsCurrentDevice bool       `json:"is_current_device"`
}

// SessionDirectory lists and revokes the access tokens of a single user
type SessionDirectory struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

func NewSessionDirectory(db *gorm.DB, tokens *TokenIssuer) *SessionDirectory {
	return &SessionDirectory{db: db, tokens: tokens}
}

// List returns the user's sessions, most recently used first. Tokens that
// were never used come last.
func (s *SessionDirectory) List(ctx context.Context, userID string, currentID uint) ([]SessionSummary, error) {
	var tokens []model.AccessToken

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_used_at IS NULL, last_used_at DESC, id DESC").
		Find(&tokens).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions, %w", err)
	}

	out := make([]SessionSummary, len(tokens))
	for i, t := range tokens {
		out[i] = SessionSummary{
			ID:              t.ID,
			Name:            t.Name,
			IPAddress:       t.LastUsedIP,
			LastUsed:        t.LastUsedAt,
			CreatedAt:       t.CreatedAt,
			IsCurrentDevice: t.ID == currentID,
		}
	}

	return out, nil
}

// Revoke deletes tokenID if it belongs to userID. A token owned by someone
// else is reported the same way as a missing one.
func (s *SessionDirectory) Revoke(ctx context.Context, userID string, tokenID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tok model.AccessToken
		err := tx.Select("id", "user_id").Where("id = ?", tokenID).First(&tok).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if tok.UserID != userID {
			return ErrNotFound
		}

		return tx.Where("id = ? AND user_id = ?", tokenID, userID).
			Delete(&model.AccessToken{}).
			Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to revoke session, %w", err)
	}

	return nil
}

// RevokeOthers removes every session of userID except the current one
func (s *SessionDirectory) RevokeOthers(ctx context.Context, userID string, currentID uint) (int64, error) {
	return s.tokens.RevokeAllExcept(ctx, userID, currentID)
}
