// Package notify delivers best-effort email notifications for review
// decisions and announcements. Delivery never blocks or fails the
// operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/metrics"
)

// Kind is the template family of a notification.
type Kind string

const (
	KindApproval     Kind = "approval"
	KindRejection    Kind = "rejection"
	KindAnnouncement Kind = "announcement"
)

// Recipient is a named email address
type Recipient struct {
	Name  string
	Email string
}

// Message is a rendered notification ready for delivery
type Message struct {
	Kind    Kind
	To      Recipient
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier schedules messages for delivery
type Notifier interface {
	Dispatch(msgs ...Message)
}

// Config selects and configures the delivery backend
type Config struct {
	Provider       string
	FromName       string
	FromEmail      string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPUseTLS     bool
	SendGridAPIKey string
}

// NewSender builds the Sender for cfg.Provider. Unconfigured SMTP
// credentials fall back to the log sender.
func NewSender(cfg Config, log zerolog.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
			log.Warn().Msg("SMTP credentials not configured - notifications will only be logged")
			return NewLogSender(log), nil
		}
		return NewSMTPSender(cfg, log), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires an API key")
		}
		return NewSendGridSender(cfg, log), nil
	case "log", "":
		return NewLogSender(log), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}

// Dispatcher sends messages on background goroutines, each bounded by a
// timeout. Failures are logged and counted, never returned.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		log:     logger.Component("notify"),
	}
}

// Dispatch queues msgs for delivery and returns immediately. Messages
// dispatched after Close are dropped.
func (d *Dispatcher) Dispatch(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		for _, msg := range msgs {
			d.log.Warn().Str("kind", string(msg.Kind)).Msg("Dispatcher closed, dropping notification")
			metrics.Notification(string(msg.Kind), false)
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		for _, msg := range msgs {
			d.deliver(msg)
		}
	}()
}

func (d *Dispatcher) deliver(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("kind", string(msg.Kind)).Msg("Notification sender panicked")
			metrics.Notification(string(msg.Kind), false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.log.Error().Err(err).
			Str("kind", string(msg.Kind)).
			Str("to", msg.To.Email).
			Msg("Failed to deliver notification")
		metrics.Notification(string(msg.Kind), false)
		return
	}
	metrics.Notification(string(msg.Kind), true)
}

// Close stops accepting new batches and blocks until every batch already
// dispatched has finished. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

// LogSender writes notifications to the log instead of delivering them
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs msg
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("kind", string(msg.Kind)).
		Str("to", msg.To.Email).
		Str("subject", msg.Subject).
		Msg("Notification (not delivered)")
	return nil
}
