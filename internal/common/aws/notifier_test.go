package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestNotifier_SendEmail(t *testing.T) {
	sesMock := &mockSES{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, []string{"asha@example.com"}, params.Destination.ToAddresses)
			assert.Equal(t, "alerts@example.com", *params.Source)
			assert.Equal(t, "Emergency alert", *params.Message.Subject.Data)
			return &ses.SendEmailOutput{MessageId: sdkaws.String("ses-1")}, nil
		},
	}

	n := NewNotifier(sesMock, nil, "alerts@example.com", "")
	id, err := n.SendEmail(context.Background(), "asha@example.com", "Emergency alert", "body")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
}

func TestNotifier_SendSMS(t *testing.T) {
	snsMock := &mockSNS{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "+919800000001", *params.PhoneNumber)
			assert.Equal(t, "Transactional", *params.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue)
			assert.Equal(t, "DRONEX", *params.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
			return &sns.PublishOutput{MessageId: sdkaws.String("sns-1")}, nil
		},
	}

	n := NewNotifier(nil, snsMock, "", "DRONEX")
	id, err := n.SendSMS(context.Background(), "+919800000001", "help")
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
}

func TestNotifier_PublishTopic(t *testing.T) {
	snsMock := &mockSNS{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "arn:aws:sns:ap-south-1:1:dispatch", *params.TopicArn)
			assert.Nil(t, params.PhoneNumber)
			assert.Equal(t, "fire", *params.MessageAttributes["category"].StringValue)
			return &sns.PublishOutput{MessageId: sdkaws.String("topic-1")}, nil
		},
	}

	n := NewNotifier(nil, snsMock, "", "")
	id, err := n.PublishTopic(context.Background(), "arn:aws:sns:ap-south-1:1:dispatch", "dispatch", "{}", map[string]string{"category": "fire"})
	require.NoError(t, err)
	assert.Equal(t, "topic-1", id)
}

func TestNotifier_Errors(t *testing.T) {
	n := NewNotifier(nil, nil, "", "")
	_, err := n.SendEmail(context.Background(), "a@b.c", "s", "b")
	assert.Error(t, err)
	_, err = n.SendSMS(context.Background(), "+1", "m")
	assert.Error(t, err)

	boom := errors.New("throttled")
	n = NewNotifier(nil, &mockSNS{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, boom
		},
	}, "", "")
	_, err = n.PublishTopic(context.Background(), "arn", "s", "m", nil)
	assert.ErrorIs(t, err, boom)
}
