package mail

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Email is a single outgoing message.
type Email struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer writes emails to the log instead of delivering them. It is the
// default in development when no SMTP host is configured.
type LogMailer struct {
	Log *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{Log: logger}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.Log.Info("email not delivered (log mailer)",
		zap.String("from", email.From),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.TextBody))
	return nil
}

// SMTPMailer delivers through an SMTP relay using PLAIN auth when a username
// is configured.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := m.Host + ":" + strconv.Itoa(m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	if err := smtp.SendMail(addr, auth, email.From, []string{email.To}, buildMIME(email)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return nil
}

func buildMIME(email Email) []byte {
	const boundary = "roleplay-mail-boundary"

	var b strings.Builder
	b.WriteString("From: " + email.From + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("UTF-8", email.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(email.TextBody + "\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(email.HTMLBody + "\r\n")

	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// Recorder keeps sent emails in memory. Tests use it in place of a real
// mailer.
type Recorder struct {
	mu   sync.Mutex
	sent []Email
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(ctx context.Context, email Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return nil
}

// Sent returns a copy of every email sent so far
func (r *Recorder) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Email, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset forgets all recorded emails
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
