package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer sends email through Amazon SES
type SESMailer struct {
	client *ses.Client
	from   string
}

// NewSESMailer creates a mailer backed by SES in the given region
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}, nil
}

// SendPasswordReset sends a password reset email
func (m *SESMailer) SendPasswordReset(ctx context.Context, input PasswordResetInput) error {
	subject := "Reset your Fluent Phrases password"
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one. The link expires in 30 minutes.\n\n%s\n\nIf you did not ask for this, you can ignore this email.\n",
		input.FirstName, input.ResetURL,
	)
	return m.send(ctx, input.Email, subject, body)
}

// SendVerification sends an email address verification email
func (m *SESMailer) SendVerification(ctx context.Context, input VerificationInput) error {
	subject := "Verify your Fluent Phrases email"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Fluent Phrases. Confirm your email address by opening the link below.\n\n%s\n",
		input.FirstName, input.VerifyURL,
	)
	return m.send(ctx, input.Email, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
