package mocks

import (
	"context"

	"github.com/campushub/modgate/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
	image *providers.InlineImage,
) (*providers.CompletionResponse, error) {
	args := m.Called(ctx, config, prompt, image)
	resp, _ := args.Get(0).(*providers.CompletionResponse) //nolint:errcheck
	return resp, args.Error(1)
}

type ProviderLocator struct {
	mock.Mock
}

func (m *ProviderLocator) Get(provider string) (providers.Client, error) {
	args := m.Called(provider)
	client, _ := args.Get(0).(providers.Client) //nolint:errcheck
	return client, args.Error(1)
}
