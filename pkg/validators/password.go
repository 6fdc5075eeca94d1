package validators

import (
	"errors"
	"unicode/utf8"
)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 255
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	n := utf8.RuneCountInString(p)
	if n < PasswordMinLength {
		return ErrPasswordTooShort
	}

	if n > PasswordMaxLength {
		return ErrPasswordTooLong
	}

	return nil
}
