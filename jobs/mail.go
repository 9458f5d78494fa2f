package jobs

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Sender delivers one e-mail.
type Sender interface {
	Send(ctx context.Context, msg SendEmailPayload) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender constructs a sender for host:port. Empty credentials skip auth.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

// Send dials the relay and sends msg as plain text.
func (s *SMTPSender) Send(ctx context.Context, msg SendEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("jobs: smtp send: %w", err)
	}
	return nil
}

// RenderOrderConfirmation builds the receipt e-mail for p.
func RenderOrderConfirmation(p OrderConfirmationPayload) SendEmailPayload {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for shopping at FreshMart. Your order #%d is being processed.\n\n", name, p.OrderID)
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "  %d x %s  $%.2f\n", l.Quantity, l.Name, l.Price*float64(l.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", p.Total)
	return SendEmailPayload{
		To:      p.Email,
		Subject: fmt.Sprintf("FreshMart order #%d confirmed", p.OrderID),
		Body:    b.String(),
	}
}
