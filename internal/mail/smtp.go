// Package mail delivers rendered documents to counterparties over SMTP.
package mail

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// Attachment is a file carried by an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Transport sends messages. Implementations must report delivery failures
// as transport errors so callers can tell them apart from their own faults.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds dialer settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPTransport delivers mail through a single SMTP endpoint.
type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
	// timeout bounds one delivery attempt when the context has no
	// earlier deadline.
	timeout time.Duration
}

// NewSMTPTransport builds a transport from config.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPTransport{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		timeout: timeout,
	}
}

// Send delivers one message. Any SMTP failure is wrapped as a transport
// error. The dial-and-send runs in its own goroutine so the context can cut
// a stuck connection off.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail: recipient address is empty: %w", shared.ErrValidation)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	for _, att := range msg.Attachments {
		data := att.Data
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
		)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: smtp delivery to %s failed: %v: %w", msg.To, err, shared.ErrTransport)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail: smtp delivery to %s timed out: %w", msg.To, shared.ErrTransport)
	}
}
