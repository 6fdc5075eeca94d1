package internal

import (
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Mail     *service.MailQueue
	Tokens   *service.TokenIssuer
	Accounts *service.Accounts
	Verifier *service.EmailVerifier
	Resets   *service.PasswordResets
	Sessions *service.SessionDirectory
	Posts    *service.PostStore
	// RevealUnknownEmail makes forgot-password and resend-verification
	// answer 400 for addresses without an account
	RevealUnknownEmail bool
}
