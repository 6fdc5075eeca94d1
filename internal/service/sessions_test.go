package service_test

import (
	"context"
	"testing"
	"time"

	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDirectory_List(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	testutil.CreateUser(t, db, "user2", "b@x.com", "secret1", true)

	tokens := service.NewTokenIssuer(db)
	sessions := service.NewSessionDirectory(db, tokens)

	old, err := tokens.Issue(ctx, "user1", "old")
	require.NoError(t, err)
	recent, err := tokens.Issue(ctx, "user1", "recent")
	require.NoError(t, err)
	never, err := tokens.Issue(ctx, "user1", "never")
	require.NoError(t, err)
	_, err = tokens.Issue(ctx, "user2", "foreign")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&model.AccessToken{}).Where("id = ?", old.ID).
		Updates(map[string]any{"last_used_at": base, "last_used_ip": "1.1.1.1"}).Error)
	require.NoError(t, db.Model(&model.AccessToken{}).Where("id = ?", recent.ID).
		Updates(map[string]any{"last_used_at": base.Add(time.Hour), "last_used_ip": "2.2.2.2"}).Error)

	list, err := sessions.List(ctx, "user1", old.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, old.ID, list[1].ID)
	assert.Equal(t, never.ID, list[2].ID)

	require.NotNil(t, list[0].IPAddress)
	assert.Equal(t, "2.2.2.2", *list[0].IPAddress)
	assert.Nil(t, list[2].LastUsed)
	assert.Nil(t, list[2].IPAddress)

	var current int
	for _, s := range list {
		if s.IsCurrentDevice {
			current++
			assert.Equal(t, old.ID, s.ID)
		}
	}
	assert.Equal(t, 1, current)
}

func TestSessionDirectory_Revoke(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)
	testutil.CreateUser(t, db, "user2", "b@x.com", "secret1", true)

	tokens := service.NewTokenIssuer(db)
	sessions := service.NewSessionDirectory(db, tokens)

	mine, err := tokens.Issue(ctx, "user1", "laptop")
	require.NoError(t, err)
	theirs, err := tokens.Issue(ctx, "user2", "phone")
	require.NoError(t, err)

	t.Run("other user's token", func(t *testing.T) {
		assert.ErrorIs(t, sessions.Revoke(ctx, "user1", theirs.ID), service.ErrNotFound)

		_, _, err := tokens.Authenticate(ctx, theirs.PlainText)
		assert.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.ErrorIs(t, sessions.Revoke(ctx, "user1", 9999), service.ErrNotFound)
	})

	t.Run("own token", func(t *testing.T) {
		require.NoError(t, sessions.Revoke(ctx, "user1", mine.ID))

		_, _, err := tokens.Authenticate(ctx, mine.PlainText)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)

		assert.ErrorIs(t, sessions.Revoke(ctx, "user1", mine.ID), service.ErrNotFound)
	})
}

func TestSessionDirectory_RevokeOthers(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "user1", "a@x.com", "secret1", true)

	tokens := service.NewTokenIssuer(db)
	sessions := service.NewSessionDirectory(db, tokens)

	current, err := tokens.Issue(ctx, "user1", "current")
	require.NoError(t, err)
	for range 3 {
		_, err := tokens.Issue(ctx, "user1", "other")
		require.NoError(t, err)
	}

	n, err := sessions.RevokeOthers(ctx, "user1", current.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	list, err := sessions.List(ctx, "user1", current.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsCurrentDevice)
}
