package service_test

import (
	"context"
	"strings"
	"testing"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/internal/testutil"
	"bitwise74/blog-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	testutil.CreateUser(t, db, "user2", "b@x.com", "secret1", true)

	tokens := service.NewTokenIssuer(db)

	issued, err := tokens.Issue(ctx, u.ID, "laptop")
	require.NoError(t, err)
	require.NotZero(t, issued.ID)

	id, secret, found := strings.Cut(issued.PlainText, "|")
	require.True(t, found)
	assert.NotEmpty(t, id)

	var stored model.AccessToken
	require.NoError(t, db.First(&stored, issued.ID).Error)
	assert.Equal(t, security.HashSecret(secret), stored.TokenHash)
	assert.NotContains(t, stored.TokenHash, secret)
	assert.Equal(t, "laptop", stored.Name)

	tok, user, err := tokens.Authenticate(ctx, issued.PlainText)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, tok.ID)
	assert.Equal(t, u.ID, user.ID)

	// The bare secret works too
	_, user, err = tokens.Authenticate(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
}

func TestTokenIssuer_AuthenticateFailsClosed(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	tokens := service.NewTokenIssuer(db)

	issued, err := tokens.Issue(ctx, u.ID, "laptop")
	require.NoError(t, err)
	_, secret, _ := strings.Cut(issued.PlainText, "|")

	for _, presented := range []string{
		"",
		"   ",
		"|",
		"abc|" + secret,
		"0|" + secret,
		"999|" + secret,
		"1|",
		"1|wrong",
		"\x00\xff",
	} {
		_, _, err := tokens.Authenticate(ctx, presented)
		assert.ErrorIs(t, err, service.ErrUnauthenticated, "%q", presented)
	}
}

func TestTokenIssuer_Revoke(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	tokens := service.NewTokenIssuer(db)

	issued, err := tokens.Issue(ctx, u.ID, "laptop")
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, issued.ID))

	_, _, err = tokens.Authenticate(ctx, issued.PlainText)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	// Second revoke is a no-op
	assert.NoError(t, tokens.Revoke(ctx, issued.ID))
	assert.NoError(t, tokens.Revoke(ctx, 12345))
}

func TestTokenIssuer_RevokeAllExcept(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	other := testutil.CreateUser(t, db, "user2", "b@x.com", "secret1", true)
	tokens := service.NewTokenIssuer(db)

	var issued []*service.IssuedToken
	for _, name := range []string{"a", "b", "c"} {
		tok, err := tokens.Issue(ctx, u.ID, name)
		require.NoError(t, err)
		issued = append(issued, tok)
	}
	foreign, err := tokens.Issue(ctx, other.ID, "other")
	require.NoError(t, err)

	n, err := tokens.RevokeAllExcept(ctx, u.ID, issued[1].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, _, err = tokens.Authenticate(ctx, issued[0].PlainText)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	_, _, err = tokens.Authenticate(ctx, issued[2].PlainText)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, _, err = tokens.Authenticate(ctx, issued[1].PlainText)
	assert.NoError(t, err)
	_, _, err = tokens.Authenticate(ctx, foreign.PlainText)
	assert.NoError(t, err, "other users keep their tokens")

	n, err = tokens.RevokeAllExcept(ctx, u.ID, issued[1].ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenIssuer_Touch(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	tokens := service.NewTokenIssuer(db)

	issued, err := tokens.Issue(ctx, u.ID, "laptop")
	require.NoError(t, err)

	tokens.Touch(ctx, issued.ID, "10.0.0.1")

	var stored model.AccessToken
	require.NoError(t, db.First(&stored, issued.ID).Error)
	require.NotNil(t, stored.LastUsedAt)
	require.NotNil(t, stored.LastUsedIP)
	assert.Equal(t, "10.0.0.1", *stored.LastUsedIP)

	// Touching a revoked token does nothing and doesn't panic
	require.NoError(t, tokens.Revoke(ctx, issued.ID))
	tokens.Touch(ctx, issued.ID, "10.0.0.2")
}
