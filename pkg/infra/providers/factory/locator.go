package factory

import (
	"fmt"
	"strings"

	bedrockClient "github.com/campushub/modgate/pkg/infra/bedrock"
	"github.com/campushub/modgate/pkg/infra/providers"
	"github.com/campushub/modgate/pkg/infra/providers/anthropic"
	"github.com/campushub/modgate/pkg/infra/providers/bedrock"
	"github.com/campushub/modgate/pkg/infra/providers/gemini"
	"github.com/campushub/modgate/pkg/infra/providers/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	bedrockClient bedrockClient.Client
}

func NewProviderLocator(bc bedrockClient.Client) ProviderLocator {
	if bc == nil {
		bc = bedrockClient.NewClient()
	}
	return &providerLocator{
		bedrockClient: bc,
	}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return openai.NewOpenaiClient(), nil
	case ProviderGemini, ProviderGoogle:
		return gemini.NewGeminiClient(), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicClient(), nil
	case ProviderBedrock:
		return bedrock.NewBedrockClient(f.bedrockClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
