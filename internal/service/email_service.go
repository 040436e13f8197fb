package service

import (
	"fmt"
	"net/smtp"

	"upline/config"
)

// EmailService sends plain-text mail over SMTP. Used for password reset
// codes only.
type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) Send(to, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.User == "" {
		return fmt.Errorf("SMTP not configured")
	}
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", to, subject, body))
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
}

func (s *EmailService) SendPasswordReset(to, code string) error {
	return s.Send(to, "ACCOUNT RESET CODE", fmt.Sprintf("This is your password reset code %s", code))
}
