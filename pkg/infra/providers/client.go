package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials `mapstructure:"credentials"`
	Model        string      `mapstructure:"model"`
	MaxTokens    int         `mapstructure:"max_tokens"`
	Temperature  float64     `mapstructure:"temperature"`
	SystemPrompt string      `mapstructure:"system_prompt"`
	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string `mapstructure:"base_url"`
}

type Credentials struct {
	APIKey     string      `mapstructure:"api_key"`
	AwsBedrock *AwsBedrock `mapstructure:"aws"`
}

type AwsBedrock struct {
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
	Region       string `mapstructure:"region"`
	UseRole      bool   `mapstructure:"use_role"`
	RoleARN      string `mapstructure:"role_arn"`
}

// InlineImage is an image carried in the request itself, never a URL.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Client sends one prompt, optionally with an inline image, to a
// vision-capable model and returns its text answer.
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string, image *InlineImage) (*CompletionResponse, error)
}
