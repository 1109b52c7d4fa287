package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/juantovo/task-manager-api/internal/logging"
)

// Service sends account lifecycle notifications over SMTP. Callers run it
// in a goroutine; a failed mail never fails the request that triggered it.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
	}
}

// SendWelcomeEmail greets a freshly registered user.
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	logger := logging.FromContext(ctx)

	body, err := renderTemplate(welcomeTemplate, name)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Welcome to Task Manager", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("welcome email sent", "email", toEmail)
	return nil
}

// SendAccountClosedEmail confirms an account deletion.
func (s *Service) SendAccountClosedEmail(ctx context.Context, toEmail, name string) error {
	logger := logging.FromContext(ctx)

	body, err := renderTemplate(accountClosedTemplate, name)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Your account has been deleted", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("account closed email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.fromEmail, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func renderTemplate(tmpl *template.Template, name string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
    <h2>Welcome, {{.Name}}!</h2>
    <p>Your Task Manager account is ready. Log in and start adding tasks.</p>
    <p style="font-size: 12px; color: #888;">If you did not create this account, you can ignore this email.</p>
</body>
</html>`))

var accountClosedTemplate = template.Must(template.New("accountClosed").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
    <h2>Goodbye, {{.Name}}</h2>
    <p>Your account and all its tasks have been deleted. We are sorry to see you go.</p>
</body>
</html>`))
