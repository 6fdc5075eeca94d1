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

	"gorm.io/gorm"
)

// EmailVerifier moves users from unverified to verified. The link it mails
// carries the user ID and a signature over the ID and email, it never expires.
type EmailVerifier struct {
	db          *gorm.DB
	signer      *security.LinkSigner
	mail        Enqueuer
	frontendURL string
}

func NewEmailVerifier(db *gorm.DB, signer *security.LinkSigner, mail Enqueuer, frontendURL string) *EmailVerifier {
	return &EmailVerifier{
		db:          db,
		signer:      signer,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Link returns the verification link for u
func (v *EmailVerifier) Link(u *model.User) string {
	return fmt.Sprintf("%s/email/verify/%s/%s",
		v.frontendURL, url.PathEscape(u.ID), v.signer.Sign(u.ID, u.Email))
}

// Send queues a verification mail for u. It returns false without sending
// anything when u is already verified.
func (v *EmailVerifier) Send(ctx context.Context, u *model.User) (bool, error) {
	if u.IsVerified() {
		return false, nil
	}

	if err := v.mail.Enqueue(verificationMail(u.Email, u.Name, v.Link(u))); err != nil {
		return false, fmt.Errorf("failed to queue verification mail, %w", err)
	}

	return true, nil
}

// SendTo looks the user up by email and calls Send
func (v *EmailVerifier) SendTo(ctx context.Context, email string) (bool, error) {
	var u model.User
	err := v.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to look up user, %w", err)
	}

	return v.Send(ctx, &u)
}

// Verify checks the link for userID and marks the user verified. alreadyVerified
// is true when nothing had to change, including when a concurrent call won.
func (v *EmailVerifier) Verify(ctx context.Context, userID, hash string) (alreadyVerified bool, err error) {
	var u model.User
	err = v.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to look up user, %w", err)
	}

	if !v.signer.Verify(u.ID, u.Email, hash) {
		return false, ErrInvalidSignature
	}

	if u.IsVerified() {
		return true, nil
	}

	res := v.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND email_verified_at IS NULL", u.ID).
		Update("email_verified_at", time.Now().UTC())
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark user verified, %w", res.Error)
	}

	return res.RowsAffected == 0, nil
}
