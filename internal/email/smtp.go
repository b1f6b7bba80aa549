package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"time"
)

const smtpTimeout = 30 * time.Second

// Sender delivers password-reset emails. Satisfied by SMTPService; tests
// substitute a fake.
type Sender interface {
	SendPasswordResetEmail(to, token string) error
}

// SMTPService sends transactional mail over plain SMTP with STARTTLS.
type SMTPService struct {
	host        string
	port        int
	username    string
	password    string
	frontendURL string
}

// NewSMTPService builds a mail sender. frontendURL is the base used to build
// reset links.
func NewSMTPService(host string, port int, username, password, frontendURL string) *SMTPService {
	return &SMTPService{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		frontendURL: frontendURL,
	}
}

// SendPasswordResetEmail mails a reset link containing the given token.
// Failures are logged and returned; the caller decides what they mean.
func (s *SMTPService) SendPasswordResetEmail(to, token string) error {
	resetLink := fmt.Sprintf("%s/auth/reset-password?resetToken=%s", s.frontendURL, token)

	subject := "Password Reset Request"
	body := fmt.Sprintf(`Hello,

We received a request to reset the password for your account on WatchMatch.

To reset your password, open the link below:

    %s

This link will expire in 1 hour. If you didn't request a password reset,
please ignore this email.

Thank you,
The WatchMatch Team`, resetLink)

	if err := s.send(to, subject, body); err != nil {
		log.Printf("Failed to send password reset email to %s: %v", to, err)
		return err
	}

	log.Printf("Password reset email sent to %s", to)
	return nil
}

func (s *SMTPService) send(to, subject, body string) error {
	msg := s.buildMessage(to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	ctx, cancel := context.WithTimeout(context.Background(), smtpTimeout)
	defer cancel()

	dialer := net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{ServerName: s.host}
		if err := client.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	}

	if s.username != "" && s.password != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.username); err != nil {
		return fmt.Errorf("SMTP MAIL command: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT command: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command: %w", err)
	}

	if _, err := wc.Write([]byte(msg)); err != nil {
		wc.Close()
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	if err := client.Quit(); err != nil {
		log.Printf("SMTP QUIT command failed: %v", err)
	}

	return nil
}

func (s *SMTPService) buildMessage(to, subject, body string) string {
	return fmt.Sprintf("From: WatchMatch <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		s.username, to, subject, body)
}
