package mailer

import (
	"context"
	"log"
)

// LogMailer writes email to the log instead of sending it. Used in
// development when no SES credentials are configured.
type LogMailer struct{}

// NewLogMailer creates a log-only mailer
func NewLogMailer() *LogMailer { return &LogMailer{} }

// SendPasswordReset logs a password reset email
func (m *LogMailer) SendPasswordReset(ctx context.Context, input PasswordResetInput) error {
	log.Printf("[mailer] password_reset email=%s url=%s", input.Email, input.ResetURL)
	return nil
}

// SendVerification logs a verification email
func (m *LogMailer) SendVerification(ctx context.Context, input VerificationInput) error {
	log.Printf("[mailer] verification email=%s url=%s", input.Email, input.VerifyURL)
	return nil
}
