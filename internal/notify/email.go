package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// EmailSender delivers over SMTP with STARTTLS.
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailSender configures an SMTP sender.
func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	return &EmailSender{host: host, port: port, username: username, password: password, from: from}
}

func (e *EmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	if err := smtp.SendMail(addr, auth, e.from, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
