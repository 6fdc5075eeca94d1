package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/pkg/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const rememberTokenSize = 45

// Hasher hashes new passwords
type Hasher interface {
	GenerateFromPassword(p string) (string, error)
}

type ResetOptions struct {
	FrontendURL string
	TTL         time.Duration
	Throttle    time.Duration
	// Now defaults to the current UTC time
	Now func() time.Time
}

type ResetInput struct {
	Email                string
	Token                string
	Password             string
	PasswordConfirmation string
}

// PasswordResets issues and consumes single-use password reset tokens.
// There's at most one live token per email.
type PasswordResets struct {
	db     *gorm.DB
	hasher Hasher
	mail   Enqueuer
	opts   ResetOptions
}

func NewPasswordResets(db *gorm.DB, hasher Hasher, mail Enqueuer, opts ResetOptions) *PasswordResets {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")

	return &PasswordResets{
		db:     db,
		hasher: hasher,
		mail:   mail,
		opts:   opts,
	}
}

// Request replaces any previous token for email with a new one and mails it.
// ErrNotFound is returned for unknown addresses, the caller decides whether
// to reveal that.
func (r *PasswordResets) Request(ctx context.Context, email string) error {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up user, %w", err)
	}

	secret, hash, err := security.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate reset token, %w", err)
	}

	now := r.opts.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PasswordResetToken
		err := tx.Where("email = ?", user.Email).First(&existing).Error
		switch {
		case err == nil:
			if r.opts.Throttle > 0 && now.Sub(existing.CreatedAt) < r.opts.Throttle {
				return ErrResetThrottled
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "created_at"}),
		}).Create(&model.PasswordResetToken{
			Email:     user.Email,
			TokenHash: hash,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrResetThrottled) {
			return err
		}
		return fmt.Errorf("failed to store reset token, %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?%s", r.opts.FrontendURL, url.Values{
		"token": {secret},
		"email": {user.Email},
	}.Encode())

	if err := r.mail.Enqueue(resetMail(user.Email, link, int(r.opts.TTL.Minutes()))); err != nil {
		return fmt.Errorf("failed to queue reset mail, %w", err)
	}

	return nil
}

// Reset consumes the token for in.Email and sets the new password. Access
// tokens issued before the reset stay valid.
func (r *PasswordResets) Reset(ctx context.Context, in ResetInput) error {
	if in.Password != in.PasswordConfirmation {
		return ErrPasswordMismatch
	}

	if in.Token == "" {
		return ErrInvalidOrExpiredToken
	}

	passwordHash, err := r.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	remember, err := security.RandomString(rememberTokenSize)
	if err != nil {
		return fmt.Errorf("failed to generate remember token, %w", err)
	}

	presented := security.HashSecret(in.Token)
	now := r.opts.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.PasswordResetToken
		err := tx.Where("email = ?", in.Email).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}

		if !security.EqualHash(row.TokenHash, presented) {
			return ErrInvalidOrExpiredToken
		}

		if now.Sub(row.CreatedAt) > r.opts.TTL {
			return ErrInvalidOrExpiredToken
		}

		// Whoever deletes the row owns the reset
		res := tx.Where("email = ? AND token_hash = ?", row.Email, row.TokenHash).
			Delete(&model.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOrExpiredToken
		}

		res = tx.Model(&model.User{}).
			Where("email = ?", row.Email).
			Updates(map[string]any{
				"password_hash":  passwordHash,
				"remember_token": remember,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOrExpiredToken
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			return err
		}
		return fmt.Errorf("failed to reset password, %w", err)
	}

	zap.L().Info("Password reset", zap.String("email", in.Email))
	return nil
}

// PruneExpired deletes reset tokens older than the TTL
func (r *PasswordResets) PruneExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", r.opts.Now().Add(-r.opts.TTL)).
		Delete(&model.PasswordResetToken{})
	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
