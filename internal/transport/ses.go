package transport

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/fishcatch/internal/pkg/logger"
)

// sesSender is the subset of the SES v2 client the gateway uses.
type sesSender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESGateway relays SMS through carrier gateways using AWS SES v2. The
// subject is left empty so carriers deliver the body as a bare text.
type SESGateway struct {
	client sesSender
	from   string
}

// NewSESGateway creates an SES-backed gateway. When accessKey is empty the
// default AWS credential chain is used.
func NewSESGateway(ctx context.Context, region, accessKey, secretKey, from string) (*SESGateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESGateway{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
	}, nil
}

// Send delivers one message to phone via the carrier's email gateway.
func (g *SESGateway) Send(ctx context.Context, phone, carrier, text string) error {
	addr, err := GatewayAddress(phone, carrier)
	if err != nil {
		return err
	}

	_, err = g.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(g.from),
		Destination: &types.Destination{
			ToAddresses: []string{addr},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String("")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(text)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending via %s gateway: %w", carrier, err)
	}

	logger.Info("sms delivered via carrier gateway",
		"carrier", carrier, "recipient", phone)
	return nil
}
