package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"a@x.com", nil},
		{"  a@x.com\t", nil},
		{"", ErrEmailEmpty},
		{"   ", ErrEmailEmpty},
		{"not-an-email", ErrEmailInvalid},
		{"Name <a@x.com>", ErrEmailInvalid},
		{strings.Repeat("a", 250) + "@x.com", ErrEmailTooLong},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailValidator(tt.in), tt.in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
}

func TestPasswordValidator(t *testing.T) {
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("12345"), ErrPasswordTooShort)
	assert.NoError(t, PasswordValidator("secret1"))
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("x", 256)), ErrPasswordTooLong)
}
