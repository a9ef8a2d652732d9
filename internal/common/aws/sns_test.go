package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSNSAPI struct {
	mock.Mock
}

func (m *MockSNSAPI) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

func TestSNSClient_Publish(t *testing.T) {
	api := new(MockSNSAPI)
	input := &sns.PublishInput{TopicArn: awssdk.String("arn:aws:sns:ap-southeast-1:000000000000:sales"), Message: awssdk.String("{}")}
	api.On("Publish", mock.Anything, input).Return(&sns.PublishOutput{MessageId: awssdk.String("m-1")}, nil)

	out, err := NewSNSClientWithAPI(api).Publish(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "m-1", awssdk.ToString(out.MessageId))
	api.AssertExpectations(t)
}
