// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
	ErrEmailTooLong = errors.New("email address is too long")
)

// EmailValidator checks a single bare address. Surrounding whitespace is
// ignored, NormalizeEmail strips it before the address is used.
func EmailValidator(e string) error {
	e = strings.TrimSpace(e)
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > 255 {
		return ErrEmailTooLong
	}

	// ParseAddress also accepts "Name <addr>", only the bare address is allowed
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}

// NormalizeEmail trims and lowercases an address before it's stored or looked up
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
