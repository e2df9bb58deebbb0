package mailer

import (
	"sync"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/civicdesk/petition-service/internal/config"
	"github.com/civicdesk/petition-service/internal/observability"
)

// TemplateKind identifies which message template a dispatch uses.
type TemplateKind string

const (
	KindSubmissionAck    TemplateKind = "submission_ack"
	KindHighUrgencyAlert TemplateKind = "high_urgency_alert"
	KindStatusChange     TemplateKind = "status_change"
	KindRejection        TemplateKind = "rejection"
	KindDeadlineReminder TemplateKind = "deadline_reminder"
	KindDailySummary     TemplateKind = "daily_summary"
	KindWeeklyReport     TemplateKind = "weekly_report"
	KindOTP              TemplateKind = "otp"
	KindWelcome          TemplateKind = "welcome"
)

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	Kind     TemplateKind
}

// Dispatcher accepts messages for asynchronous best-effort delivery.
// Enqueue never blocks the caller and never reports delivery outcome.
type Dispatcher interface {
	Enqueue(msg Message) bool
}

// Sender performs a single delivery attempt.
type Sender interface {
	Send(msg Message) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a gomail-backed sender.
func NewSMTPSender(cfg config.SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	return s.dialer.DialAndSend(m)
}

// Queue is a bounded in-process mail queue drained by a fixed worker
// pool. Delivery is at-most-one-attempt: failures and timeouts are
// logged and dropped, a full queue drops the message at enqueue time.
type Queue struct {
	ch          chan Message
	sender      Sender
	logger      *zap.Logger
	metrics     *observability.Metrics
	sendTimeout time.Duration
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewQueue constructs the queue and starts its workers.
func NewQueue(sender Sender, cfg config.SMTPConfig, logger *zap.Logger, metrics *observability.Metrics) *Queue {
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}

	q := &Queue{
		ch:          make(chan Message, size),
		sender:      sender,
		logger:      logger,
		metrics:     metrics,
		sendTimeout: cfg.SendTimeout(),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue hands a message to the worker pool without blocking. Returns
// false when the queue is saturated and the message was dropped.
func (q *Queue) Enqueue(msg Message) bool {
	select {
	case q.ch <- msg:
		return true
	default:
		q.logger.Warn("mail queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("kind", string(msg.Kind)))
		q.metrics.RecordMail(string(msg.Kind), false)
		return false
	}
}

// Close stops accepting messages and waits for in-flight sends.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for msg := range q.ch {
		q.deliver(msg)
	}
}

// deliver attempts one send under the configured timeout so a hung SMTP
// conversation cannot starve the pool.
func (q *Queue) deliver(msg Message) {
	done := make(chan error, 1)
	go func() {
		done <- q.sender.Send(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			q.logger.Warn("mail delivery failed",
				zap.String("to", msg.To),
				zap.String("kind", string(msg.Kind)),
				zap.Error(err))
			q.metrics.RecordMail(string(msg.Kind), false)
			return
		}
		q.logger.Debug("mail delivered",
			zap.String("to", msg.To),
			zap.String("kind", string(msg.Kind)))
		q.metrics.RecordMail(string(msg.Kind), true)
	case <-time.After(q.sendTimeout):
		q.logger.Warn("mail delivery timed out",
			zap.String("to", msg.To),
			zap.String("kind", string(msg.Kind)))
		q.metrics.RecordMail(string(msg.Kind), false)
	}
}
