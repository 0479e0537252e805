// Package aws wraps the SES and SNS clients used to reach emergency contacts
// and the dispatch topic.
package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SESService is the subset of the SES client the notifier needs.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSService is the subset of the SNS client the notifier needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	ses       SESService
	sns       SNSService
	fromEmail string
	senderID  string
}

func NewNotifier(sesClient SESService, snsClient SNSService, fromEmail, senderID string) *Notifier {
	return &Notifier{
		ses:       sesClient,
		sns:       snsClient,
		fromEmail: fromEmail,
		senderID:  senderID,
	}
}

// NewNotifierFromRegion loads the default credential chain for region.
func NewNotifierFromRegion(ctx context.Context, region, fromEmail, senderID string) (*Notifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewNotifier(ses.NewFromConfig(cfg), sns.NewFromConfig(cfg), fromEmail, senderID), nil
}

// SendEmail sends a plain-text message and returns the SES message id.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	if n.ses == nil {
		return "", fmt.Errorf("email channel not configured")
	}
	out, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: sdkaws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: sdkaws.String(body)},
			},
		},
		Source: sdkaws.String(n.fromEmail),
	})
	if err != nil {
		return "", err
	}
	return sdkaws.ToString(out.MessageId), nil
}

// SendSMS publishes a transactional SMS directly to a phone number.
func (n *Notifier) SendSMS(ctx context.Context, phone, message string) (string, error) {
	if n.sns == nil {
		return "", fmt.Errorf("sms channel not configured")
	}
	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String("Transactional"),
		},
	}
	if n.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(n.senderID),
		}
	}
	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       sdkaws.String(phone),
		Message:           sdkaws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", err
	}
	return sdkaws.ToString(out.MessageId), nil
}

// PublishTopic publishes message to an SNS topic with string attributes.
func (n *Notifier) PublishTopic(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
	if n.sns == nil {
		return "", fmt.Errorf("sns not configured")
	}
	attrs := make(map[string]snstypes.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		attrs[k] = snstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}
	out, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn:          sdkaws.String(topicARN),
		Subject:           sdkaws.String(subject),
		Message:           sdkaws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", err
	}
	return sdkaws.ToString(out.MessageId), nil
}
