package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"domainmarket/marketplace-backend/pkg/errs"
)

// SESSender sends email through AWS SESv2.
type SESSender struct {
	client *sesv2.Client
	from   string
}

// NewSESSender creates a sender using the default AWS credential chain.
func NewSESSender(ctx context.Context, region, fromAddress string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESSender{
		client: sesv2.NewFromConfig(cfg),
		from:   fromAddress,
	}, nil
}

// Send delivers one HTML email and returns the SES message id.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	})
	if err != nil {
		// SES failures are provider-side from this service's point of
		// view; callers decide whether to retry the whole send.
		return "", fmt.Errorf("ses send failed: %w (%w)", err, errs.ErrTransientProvider)
	}
	if out.MessageId == nil {
		return "", nil
	}
	return *out.MessageId, nil
}
