package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/campushub/modgate/pkg/infra/bedrock"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) BuildClient(ctx context.Context, creds bedrock.Credentials) (bedrock.Runtime, error) {
	args := m.Called(ctx, creds)
	rt, _ := args.Get(0).(bedrock.Runtime) //nolint:errcheck
	return rt, args.Error(1)
}

type Runtime struct {
	mock.Mock
}

func (m *Runtime) InvokeModel(
	ctx context.Context,
	params *bedrockruntime.InvokeModelInput,
	optFns ...func(*bedrockruntime.Options),
) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*bedrockruntime.InvokeModelOutput) //nolint:errcheck
	return out, args.Error(1)
}
