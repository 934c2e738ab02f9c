package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender delivers outbound messages. The SES implementation is the
// production path; DryRun keeps local and test environments from sending
// real mail.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SESClient is the slice of the SES API the sender uses, so tests can fake
// the AWS client.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

var _ EmailSender = (*SESSender)(nil)

type SESSender struct {
	client SESClient
	from   string
	dryRun bool
	logger *slog.Logger
}

func NewSESSender(client SESClient, from string, dryRun bool, logger *slog.Logger) *SESSender {
	return &SESSender{
		client: client,
		from:   from,
		dryRun: dryRun,
		logger: logger,
	}
}

// NewSESClientFromEnv builds the real SES client using the default AWS
// credential chain.
func NewSESClientFromEnv(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

func (s *SESSender) Send(ctx context.Context, to, subject, body string) error {
	if s.dryRun {
		s.logger.InfoContext(ctx, "dry-run email",
			slog.String("to", to),
			slog.String("subject", subject))
		return nil
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}
	return nil
}
