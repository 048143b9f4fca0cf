package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"bitwise74/todo-api/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "Verification Mail"

type VerificationMail struct {
	To       string
	UserName string
	Code     string
	// Adds the thank you and "didn't register" paragraphs
	Registration bool
}

// Mailer delivers verification codes. A nil error means the mail was
// accepted for delivery.
type Mailer interface {
	SendVerificationMail(ctx context.Context, m *VerificationMail) error
}

// NewMailer returns the mailer selected by mail.driver
func NewMailer(cfg *config.Config) (Mailer, error) {
	switch cfg.Mail.Driver {
	case "smtp":
		return NewSMTPMailer(cfg.Mail, cfg.App.Name), nil
	case "log":
		zap.L().Warn("Using the log mail driver, verification codes will be written to the log")
		return &LogMailer{appName: cfg.App.Name}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}
}

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	appName string
}

func NewSMTPMailer(c config.Mail, appName string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(c.Host, c.Port, c.Username, c.Password),
		from:    c.From,
		appName: appName,
	}
}

func (s *SMTPMailer) SendVerificationMail(ctx context.Context, m *VerificationMail) error {
	if strings.EqualFold(m.To, s.from) {
		return errors.New("refusing to mail the sender address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", verificationSubject)
	msg.SetBody("text/html", RenderVerificationMail(m, s.appName))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail, %w", err)
	}

	return nil
}

// LogMailer writes the mail to the log instead of sending it. Meant for
// local development only since the code ends up in the logs.
type LogMailer struct {
	appName string
}

func (l *LogMailer) SendVerificationMail(_ context.Context, m *VerificationMail) error {
	zap.L().Info("Verification mail",
		zap.String("to", m.To),
		zap.String("subject", verificationSubject),
		zap.String("code", m.Code),
		zap.Bool("registration", m.Registration))

	return nil
}

func RenderVerificationMail(m *VerificationMail, appName string) string {
	app := html.EscapeString(appName)

	var b strings.Builder

	fmt.Fprintf(&b, "<h1>%s</h1>\n", verificationSubject)
	fmt.Fprintf(&b, "<p>Hi %s!</p>\n", html.EscapeString(m.UserName))

	if m.Registration {
		fmt.Fprintf(&b, "<p>Thank you for registering with %s. Use the verification code below to complete the process:</p>\n", app)
	}

	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(m.Code))
	b.WriteString("<p>Please enter this code in the app to verify your email.</p>\n")

	if m.Registration {
		fmt.Fprintf(&b, "<p>If you didn't register on %s, ignore this email.</p>\n", app)
	}

	fmt.Fprintf(&b, "<p>Thanks,<br>%s</p>\n", app)

	return b.String()
}
