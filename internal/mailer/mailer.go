package mailer

import "context"

// PasswordResetInput carries everything needed to send a reset email
type PasswordResetInput struct {
	Email     string
	FirstName string
	ResetURL  string
}

// VerificationInput carries everything needed to send a verification email
type VerificationInput struct {
	Email     string
	FirstName string
	VerifyURL string
}

// Mailer sends transactional email to users
type Mailer interface {
	SendPasswordReset(ctx context.Context, input PasswordResetInput) error
	SendVerification(ctx context.Context, input VerificationInput) error
}
