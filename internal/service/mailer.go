package service

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers a single message
type Mailer interface {
	Send(m *EmailMessage) error
}

// Enqueuer hands a message off for delivery without waiting on it
type Enqueuer interface {
	Enqueue(m *EmailMessage) error
}

// DispatchError is returned by a mailer when the message couldn't be delivered
type DispatchError struct {
	To  string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to dispatch mail to %s, %v", e.To, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPMailer) Send(m *EmailMessage) error {
	if m.To == s.from {
		return &DispatchError{To: m.To, Err: fmt.Errorf("refusing to mail the sender address")}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.TextBody)
	if m.HTMLBody != "" {
		msg.AddAlternative("text/html", m.HTMLBody)
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return &DispatchError{To: m.To, Err: err}
	}

	return nil
}

// LogMailer only logs messages. Used when no SMTP host is configured
type LogMailer struct{}

func (LogMailer) Send(m *EmailMessage) error {
	zap.L().Info("Mail not sent, no SMTP host configured",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.TextBody))
	return nil
}

// MailQueue sends mail on a fixed pool of workers so request handlers
// never wait on SMTP
type MailQueue struct {
	mailer  Mailer
	jobs    chan *EmailMessage
	workers int
	pending atomic.Int32

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewMailQueue(m Mailer, size, workers int) *MailQueue {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}

	zap.L().Debug("Initializing mail queue", zap.Int("size", size), zap.Int("workers", workers))

	return &MailQueue{
		mailer:  m,
		jobs:    make(chan *EmailMessage, size),
		workers: workers,
	}
}

func (q *MailQueue) StartWorkerPool() {
	for range q.workers {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	defer q.wg.Done()

	for m := range q.jobs {
		err := q.mailer.Send(m)
		q.pending.Add(-1)

		if err != nil {
			zap.L().Error("Mail dispatch failed", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
			continue
		}

		zap.L().Debug("Mail dispatched", zap.String("to", m.To), zap.String("subject", m.Subject))
	}
}

func (q *MailQueue) Enqueue(m *EmailMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrMailQueueClosed
	}

	q.pending.Add(1)

	select {
	case q.jobs <- m:
		return nil
	default:
		q.pending.Add(-1)
		return ErrMailQueueFull
	}
}

// Pending returns the number of queued messages not yet handed to the mailer
func (q *MailQueue) Pending() int {
	return int(q.pending.Load())
}

// Close stops accepting mail and waits until the queued messages are sent
func (q *MailQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}
