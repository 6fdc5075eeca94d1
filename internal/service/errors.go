package service

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidSignature      = errors.New("invalid verification signature")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrPasswordMismatch      = errors.New("password confirmation does not match")
	ErrResetThrottled        = errors.New("reset requested too recently")
	ErrCannotLikeOwnPost     = errors.New("cannot like own post")
	ErrMailQueueFull         = errors.New("mail queue full")
	ErrMailQueueClosed       = errors.New("mail queue closed")
)
