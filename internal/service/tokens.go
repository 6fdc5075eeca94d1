package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/pkg/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const touchTimeout = 5 * time.Second

type IssuedToken struct {
	ID uint
	// PlainText is "<id>|<secret>" and is never stored
	PlainText string
}

type TokenIssuer struct {
	db *gorm.DB
}

func NewTokenIssuer(db *gorm.DB) *TokenIssuer {
	return &TokenIssuer{db: db}
}

// Issue creates a new access token for userID labeled with the device name
func (t *TokenIssuer) Issue(ctx context.Context, userID, label string) (*IssuedToken, error) {
	secret, hash, err := security.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token secret, %w", err)
	}

	tok := model.AccessToken{
		UserID:    userID,
		Name:      label,
		TokenHash: hash,
	}

	if err := t.db.WithContext(ctx).Create(&tok).Error; err != nil {
		return nil, fmt.Errorf("failed to store access token, %w", err)
	}

	return &IssuedToken{
		ID:        tok.ID,
		PlainText: strconv.FormatUint(uint64(tok.ID), 10) + "|" + secret,
	}, nil
}

// Authenticate resolves a presented bearer token to its record and owner.
// Anything that doesn't match a stored token yields ErrUnauthenticated.
func (t *TokenIssuer) Authenticate(ctx context.Context, presented string) (*model.AccessToken, *model.User, error) {
	id, secret, ok := splitPlainText(presented)
	if !ok {
		return nil, nil, ErrUnauthenticated
	}

	var tok model.AccessToken
	err := t.db.WithContext(ctx).
		Where("token_hash = ?", security.HashSecret(secret)).
		First(&tok).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to look up access token, %w", err)
	}

	if id != 0 && tok.ID != id {
		return nil, nil, ErrUnauthenticated
	}

	var user model.User
	err = t.db.WithContext(ctx).Where("id = ?", tok.UserID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to look up token owner, %w", err)
	}

	return &tok, &user, nil
}

// Revoke deletes a token. Revoking a token that's already gone is not an error.
func (t *TokenIssuer) Revoke(ctx context.Context, tokenID uint) error {
	err := t.db.WithContext(ctx).
		Where("id = ?", tokenID).
		Delete(&model.AccessToken{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to revoke access token, %w", err)
	}

	return nil
}

// RevokeAllExcept deletes every token of userID except currentID and
// returns how many were removed
func (t *TokenIssuer) RevokeAllExcept(ctx context.Context, userID string, currentID uint) (int64, error) {
	res := t.db.WithContext(ctx).
		Where("user_id = ? AND id <> ?", userID, currentID).
		Delete(&model.AccessToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to revoke access tokens, %w", res.Error)
	}

	return res.RowsAffected, nil
}

// Touch records when and from where a token was last used. Failures are
// only logged.
func (t *TokenIssuer) Touch(ctx context.Context, tokenID uint, ip string) {
	ctx, cancel := context.WithTimeout(ctx, touchTimeout)
	defer cancel()

	err := t.db.WithContext(ctx).
		Model(&model.AccessToken{}).
		Where("id = ?", tokenID).
		UpdateColumns(map[string]any{
			"last_used_at": time.Now().UTC(),
			"last_used_ip": ip,
		}).
		Error
	if err != nil {
		zap.L().Warn("Failed to update token usage", zap.Uint("token_id", tokenID), zap.Error(err))
	}
}

// TouchAsync runs Touch in the background, detached from the request's cancellation
func (t *TokenIssuer) TouchAsync(ctx context.Context, tokenID uint, ip string) {
	go t.Touch(context.WithoutCancel(ctx), tokenID, ip)
}

func splitPlainText(s string) (uint, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", false
	}

	idStr, secret, found := strings.Cut(s, "|")
	if !found {
		return 0, s, true
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 || secret == "" {
		return 0, "", false
	}

	return uint(id), secret, true
}
