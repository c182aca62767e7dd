package clients

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const charset = "UTF-8"

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESTransport struct {
	api    SESAPI
	sender mail.Address
}

// NewSESTransport uses the default AWS credential chain and region.
func NewSESTransport(ctx context.Context, sender mail.Address) (*SESTransport, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return NewSESTransportWithAPI(ses.NewFromConfig(cfg), sender), nil
}

func NewSESTransportWithAPI(api SESAPI, sender mail.Address) *SESTransport {
	return &SESTransport{
		api:    api,
		sender: sender,
	}
}

func (t *SESTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(t.sender.String()),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charset)},
			},
		},
	}

	if _, err := t.api.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending email through ses: %w", err)
	}

	return nil
}
