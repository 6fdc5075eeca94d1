package service_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type resetFixture struct {
	db     *gorm.DB
	out    *testutil.Outbox
	resets *service.PasswordResets
	now    time.Time
}

func newResetFixture(t *testing.T) *resetFixture {
	f := &resetFixture{
		db:  testutil.NewDB(t),
		out: &testutil.Outbox{},
		now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	testutil.CreateUser(t, f.db, "user1", "a@x.com", "secret1", true)

	f.resets = service.NewPasswordResets(f.db, testutil.Hasher(), f.out, service.ResetOptions{
		FrontendURL: "http://localhost:5173",
		TTL:         time.Hour,
		Throttle:    time.Minute,
		Now:         func() time.Time { return f.now },
	})
	return f
}

// token pulls the reset token out of the last mailed link
func (f *resetFixture) token(t *testing.T) string {
	t.Helper()

	msg := f.out.Last()
	require.NotNil(t, msg)

	i := strings.Index(msg.TextBody, "http://localhost:5173/reset-password?")
	require.GreaterOrEqual(t, i, 0)

	link := strings.Fields(msg.TextBody[i:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Query().Get("email"))

	return u.Query().Get("token")
}

func (f *resetFixture) input(token, password string) service.ResetInput {
	return service.ResetInput{
		Email:                "a@x.com",
		Token:                token,
		Password:             password,
		PasswordConfirmation: password,
	}
}

func TestPasswordResets_RequestAndReset(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	var before model.User
	require.NoError(t, f.db.First(&before, "id = ?", "user1").Error)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	token := f.token(t)
	require.NotEmpty(t, token)

	var row model.PasswordResetToken
	require.NoError(t, f.db.First(&row, "email = ?", "a@x.com").Error)
	assert.NotEqual(t, token, row.TokenHash)

	f.now = f.now.Add(30 * time.Minute)
	require.NoError(t, f.resets.Reset(ctx, f.input(token, "newpass1")))

	var after model.User
	require.NoError(t, f.db.First(&after, "id = ?", "user1").Error)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
	assert.NotEmpty(t, after.RememberToken)
	assert.NotEqual(t, before.RememberToken, after.RememberToken)

	ok, err := testutil.Hasher().VerifyPasswd("newpass1", after.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	var count int64
	require.NoError(t, f.db.Model(&model.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)

	// Single use
	err = f.resets.Reset(ctx, f.input(token, "another1"))
	assert.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)
}

func TestPasswordResets_UnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	err := f.resets.Request(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Zero(t, f.out.Len())
}

func TestPasswordResets_Throttle(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	first := f.token(t)

	f.now = f.now.Add(30 * time.Second)
	assert.ErrorIs(t, f.resets.Request(ctx, "a@x.com"), service.ErrResetThrottled)
	assert.Equal(t, 1, f.out.Len())

	f.now = f.now.Add(time.Minute)
	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	second := f.token(t)
	assert.NotEqual(t, first, second)

	// Only the newest token is live
	assert.ErrorIs(t, f.resets.Reset(ctx, f.input(first, "newpass1")), service.ErrInvalidOrExpiredToken)
	assert.NoError(t, f.resets.Reset(ctx, f.input(second, "newpass1")))
}

func TestPasswordResets_Expired(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	token := f.token(t)

	f.now = f.now.Add(61 * time.Minute)
	assert.ErrorIs(t, f.resets.Reset(ctx, f.input(token, "newpass1")), service.ErrInvalidOrExpiredToken)

	n, err := f.resets.PruneExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPasswordResets_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	token := f.token(t)

	in := f.input(token, "newpass1")
	in.PasswordConfirmation = "different"
	assert.ErrorIs(t, f.resets.Reset(ctx, in), service.ErrPasswordMismatch)

	assert.ErrorIs(t, f.resets.Reset(ctx, f.input("", "newpass1")), service.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, f.resets.Reset(ctx, f.input("wrong", "newpass1")), service.ErrInvalidOrExpiredToken)

	in = f.input(token, "newpass1")
	in.Email = "b@x.com"
	assert.ErrorIs(t, f.resets.Reset(ctx, in), service.ErrInvalidOrExpiredToken)

	// The token survived the failed attempts
	assert.NoError(t, f.resets.Reset(ctx, f.input(token, "newpass1")))
}

func TestPasswordResets_KeepsAccessTokens(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)
	tokens := service.NewTokenIssuer(f.db)

	issued, err := tokens.Issue(ctx, "user1", "laptop")
	require.NoError(t, err)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	require.NoError(t, f.resets.Reset(ctx, f.input(f.token(t), "newpass1")))

	_, _, err = tokens.Authenticate(ctx, issued.PlainText)
	assert.NoError(t, err)
}

func TestPasswordResets_ConcurrentReset(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	require.NoError(t, f.resets.Request(ctx, "a@x.com"))
	token := f.token(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded int

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.resets.Reset(ctx, f.input(token, "newpass1"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
