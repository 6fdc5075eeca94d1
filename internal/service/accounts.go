package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bitwise74/blog-api/internal/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type PasswordHasher interface {
	Hasher
	VerifyPasswd(p, e string) (bool, error)
	NeedsRehash(e string) bool
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Accounts ties registration and login to the token issuer and the
// verification workflow
type Accounts struct {
	db       *gorm.DB
	hasher   PasswordHasher
	tokens   *TokenIssuer
	verifier *EmailVerifier

	dummyOnce sync.Once
	dummyHash string
}

func NewAccounts(db *gorm.DB, hasher PasswordHasher, tokens *TokenIssuer, verifier *EmailVerifier) *Accounts {
	return &Accounts{
		db:       db,
		hasher:   hasher,
		tokens:   tokens,
		verifier: verifier,
	}
}

// Register creates an unverified user and queues the verification mail.
// A failure to queue the mail doesn't undo the registration, the user can
// ask for another link.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	// Skips hashing for the common case, the unique index still decides races
	taken, err := a.EmailTaken(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := a.hasher.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := model.User{
		ID:           userID,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}

	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	if _, err := a.verifier.Send(ctx, &user); err != nil {
		zap.L().Warn("Verification mail not queued after registration", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &user, nil
}

// EmailTaken reports whether an account with email exists
func (a *Accounts) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email, %w", err)
	}

	return n > 0, nil
}

// Login checks the credentials and issues a token labeled device. Unknown
// emails and wrong passwords both produce ErrInvalidCredentials.
func (a *Accounts) Login(ctx context.Context, email, password, device string) (*IssuedToken, *model.User, error) {
	var user model.User
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn the same time a real check would take
			_, _ = a.hasher.VerifyPasswd(password, a.dummy())
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := a.hasher.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password, %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		return nil, nil, ErrEmailNotVerified
	}

	if a.hasher.NeedsRehash(user.PasswordHash) {
		a.rehash(ctx, &user, password)
	}

	tok, err := a.tokens.Issue(ctx, user.ID, device)
	if err != nil {
		return nil, nil, err
	}

	return tok, &user, nil
}

func (a *Accounts) rehash(ctx context.Context, user *model.User, password string) {
	hash, err := a.hasher.GenerateFromPassword(password)
	if err == nil {
		err = a.db.WithContext(ctx).
			Model(&model.User{}).
			Where("id = ? AND password_hash = ?", user.ID, user.PasswordHash).
			Update("password_hash", hash).
			Error
	}
	if err != nil {
		zap.L().Warn("Failed to upgrade password hash", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (a *Accounts) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.GenerateFromPassword("not-a-real-password")
	})
	return a.dummyHash
}
