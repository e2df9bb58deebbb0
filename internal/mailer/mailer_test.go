package mailer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicdesk/petition-service/internal/config"
	"github.com/civicdesk/petition-service/internal/observability"
)

type captureSender struct {
	mu   sync.Mutex
	sent []Message
	fail bool
}

func (c *captureSender) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("smtp unavailable")
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestQueue(sender Sender, size, workers int) *Queue {
	cfg := config.SMTPConfig{
		QueueSize:          size,
		Workers:            workers,
		SendTimeoutSeconds: 2,
	}
	return NewQueue(sender, cfg, zap.NewNop(), observability.NewMetrics())
}

func TestQueueDeliversEnqueuedMessages(t *testing.T) {
	sender := &captureSender{}
	q := newTestQueue(sender, 16, 2)

	for i := 0; i < 5; i++ {
		ok := q.Enqueue(OTP("someone@example.com", "Someone", "123456"))
		require.True(t, ok)
	}
	q.Close()

	assert.Equal(t, 5, sender.count())
}

func TestQueueDropsWhenFull(t *testing.T) {
	blocker := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	sender := senderFunc(func(Message) error {
		startedOnce.Do(func() { close(started) })
		<-blocker
		return nil
	})
	q := newTestQueue(sender, 1, 1)

	// first message occupies the worker, second fills the buffer
	require.True(t, q.Enqueue(Welcome("a@example.com", "A")))
	<-started
	require.True(t, q.Enqueue(Welcome("b@example.com", "B")))

	dropped := false
	for i := 0; i < 10; i++ {
		if !q.Enqueue(Welcome("c@example.com", "C")) {
			dropped = true
			break
		}
	}
	assert.True(t, dropped)

	close(blocker)
	q.Close()
}

func TestQueueSwallowsSendFailures(t *testing.T) {
	sender := &captureSender{fail: true}
	q := newTestQueue(sender, 8, 1)

	require.True(t, q.Enqueue(Welcome("a@example.com", "A")))
	q.Close()

	assert.Equal(t, 0, sender.count())
}

type senderFunc func(Message) error

func (f senderFunc) Send(msg Message) error { return f(msg) }

func TestTemplatesCarryTicketAndKind(t *testing.T) {
	msg := SubmissionAck("user@example.com", "Jordan", "PET-ABC12345", "Fix the bridge")
	assert.Equal(t, KindSubmissionAck, msg.Kind)
	assert.Contains(t, msg.Subject, "PET-ABC12345")
	assert.Contains(t, msg.HTMLBody, "Fix the bridge")

	rej := Rejection("user@example.com", "Jordan", "PET-ABC12345", "Fix the bridge", "duplicate request")
	assert.Equal(t, KindRejection, rej.Kind)
	assert.Contains(t, rej.HTMLBody, "duplicate request")

	rem := DeadlineReminder("dept@city.test", "PET-ABC12345", "Fix the bridge", 7.5)
	assert.Equal(t, KindDeadlineReminder, rem.Kind)
	assert.Contains(t, rem.HTMLBody, "7.5 hours")
}
