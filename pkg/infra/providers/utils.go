package providers

import (
	"encoding/base64"
	"errors"
)

const DefaultMaxTokens = 512

var (
	ErrMissingAPIKey = errors.New("API key is required")
	ErrMissingModel  = errors.New("model is required")
	ErrEmptyResponse = errors.New("no completions returned")
)

func (i *InlineImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i *InlineImage) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

func MaxTokens(config *Config) int {
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return DefaultMaxTokens
}
