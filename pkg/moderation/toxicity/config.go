package toxicity

import (
	"strings"
	"time"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderNone        = "none"

	DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/unitary/toxic-bert"
	DefaultOpenAIURL      = "https://api.openai.com/v1/moderations"
	DefaultOpenAIModel    = "omni-moderation-latest"

	DefaultThreshold       = 0.55
	DefaultTimeout         = 3 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

var DefaultToxicLabels = []string{
	"toxic",
	"toxicity",
	"severe_toxic",
	"offensive",
	"abusive",
	"hate",
	"hateful",
	"hate_speech",
	"identity_hate",
	"insult",
	"obscene",
	"threat",
	"harassment",
	"harassment_threatening",
	"hate_threatening",
	"violence",
}

type Config struct {
	Provider        string        `mapstructure:"provider"`
	URL             string        `mapstructure:"url"`
	Token           string        `mapstructure:"token"`
	Model           string        `mapstructure:"model"`
	Threshold       float64       `mapstructure:"threshold"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ToxicLabels     []string      `mapstructure:"toxic_labels"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

func DefaultConfig() Config {
	return Config{
		Provider:        ProviderHuggingFace,
		URL:             DefaultHuggingFaceURL,
		Threshold:       DefaultThreshold,
		Timeout:         DefaultTimeout,
		ToxicLabels:     DefaultToxicLabels,
		BreakerFailures: DefaultBreakerFailures,
		BreakerCooldown: DefaultBreakerCooldown,
	}
}

func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderHuggingFace
	}
	if c.URL == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.URL = DefaultOpenAIURL
		default:
			c.URL = DefaultHuggingFaceURL
		}
	}
	if c.Provider == ProviderOpenAI && c.Model == "" {
		c.Model = DefaultOpenAIModel
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = DefaultThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if len(c.ToxicLabels) == 0 {
		c.ToxicLabels = DefaultToxicLabels
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = DefaultBreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = DefaultBreakerCooldown
	}
	return c
}

var labelReplacer = strings.NewReplacer("-", "_", " ", "_", "/", "_")

// NormalizeLabel folds provider label spellings ("Hate-Speech",
// "harassment/threatening") onto a single snake_case form.
func NormalizeLabel(label string) string {
	return labelReplacer.Replace(strings.ToLower(strings.TrimSpace(label)))
}
