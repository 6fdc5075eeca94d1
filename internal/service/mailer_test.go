package service_test

import (
	"errors"
	"sync"
	"testing"

	"bitwise74/blog-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu    sync.Mutex
	sent  []string
	block chan struct{}
	err   error
}

func (r *recordingMailer) Send(m *service.EmailMessage) error {
	if r.block != nil {
		<-r.block
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m.To)
	return r.err
}

func TestMailQueue_DeliversBeforeClose(t *testing.T) {
	m := &recordingMailer{}
	q := service.NewMailQueue(m, 10, 2)
	q.StartWorkerPool()

	for _, to := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, q.Enqueue(&service.EmailMessage{To: to}))
	}

	q.Close()

	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com"}, m.sent)
	assert.Zero(t, q.Pending())

	assert.ErrorIs(t, q.Enqueue(&service.EmailMessage{To: "d@x.com"}), service.ErrMailQueueClosed)

	// Closing twice is fine
	q.Close()
}

func TestMailQueue_FullQueueDoesNotBlock(t *testing.T) {
	m := &recordingMailer{block: make(chan struct{})}
	q := service.NewMailQueue(m, 1, 1)

	// No workers yet so the buffer fills up
	require.NoError(t, q.Enqueue(&service.EmailMessage{To: "a@x.com"}))
	assert.ErrorIs(t, q.Enqueue(&service.EmailMessage{To: "b@x.com"}), service.ErrMailQueueFull)
	assert.Equal(t, 1, q.Pending())

	q.StartWorkerPool()
	close(m.block)
	q.Close()

	assert.Equal(t, []string{"a@x.com"}, m.sent)
}

func TestMailQueue_DispatchErrorsAreLogged(t *testing.T) {
	m := &recordingMailer{err: &service.DispatchError{To: "a@x.com", Err: errors.New("connection refused")}}
	q := service.NewMailQueue(m, 5, 1)
	q.StartWorkerPool()

	require.NoError(t, q.Enqueue(&service.EmailMessage{To: "a@x.com"}))
	q.Close()

	assert.Len(t, m.sent, 1)
}

func TestDispatchError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&service.DispatchError{To: "a@x.com", Err: inner})

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "a@x.com")
}
