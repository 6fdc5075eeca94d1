// Package testutil contains helpers shared by tests
package testutil

import (
	"sync"
	"testing"
	"time"

	"bitwise74/blog-api/db"
	"bitwise74/blog-api/internal/model"
	"bitwise74/blog-api/internal/service"
	"bitwise74/blog-api/pkg/security"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	d, err := db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })
	return d
}

// Hasher returns a cheap argon2id hasher for tests
func Hasher() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Outbox is an Enqueuer that keeps every message in memory
type Outbox struct {
	mu       sync.Mutex
	Messages []*service.EmailMessage
	Err      error
}

func (o *Outbox) Enqueue(m *service.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Err != nil {
		return o.Err
	}

	o.Messages = append(o.Messages, m)
	return nil
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.Messages)
}

func (o *Outbox) Last() *service.EmailMessage {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.Messages) == 0 {
		return nil
	}
	return o.Messages[len(o.Messages)-1]
}

// CreateUser stores a user with the given password, verified when verified is set
func CreateUser(t *testing.T, d *gorm.DB, id, email, password string, verified bool) *model.User {
	t.Helper()

	hash, err := Hasher().GenerateFromPassword(password)
	require.NoError(t, err)

	u := &model.User{
		ID:           id,
		Name:         "User " + id,
		Email:        email,
		PasswordHash: hash,
	}
	if verified {
		now := time.Now().UTC()
		u.EmailVerifiedAt = &now
	}

	require.NoError(t, d.Create(u).Error)
	return u
}
