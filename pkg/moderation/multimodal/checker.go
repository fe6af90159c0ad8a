package multimodal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campushub/modgate/pkg/infra/httpx"
	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/infra/providers"
	"github.com/campushub/modgate/pkg/infra/providers/factory"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/sirupsen/logrus"
)

const (
	ProviderNone = "none"

	metricsComponent = "vision"

	DefaultTimeout         = 8 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// Checker judges an inline image against the post it is attached to.
// Implementations never fail: problems yield an unavailable verdict.
type Checker interface {
	AnalyzeImage(ctx context.Context, topic moderation.Topic, title, content string, image *moderation.Image) moderation.ImageVerdict
}

type Config struct {
	Provider        string                `mapstructure:"provider"`
	Model           string                `mapstructure:"model"`
	APIKey          string                `mapstructure:"api_key"`
	BaseURL         string                `mapstructure:"base_url"`
	MaxTokens       int                   `mapstructure:"max_tokens"`
	Timeout         time.Duration         `mapstructure:"timeout"`
	AWS             *providers.AwsBedrock `mapstructure:"aws"`
	BreakerFailures uint32                `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration         `mapstructure:"breaker_cooldown"`
}

type VisionChecker struct {
	client   providers.Client
	provider string
	config   providers.Config
	timeout  time.Duration
	breaker  httpx.CircuitBreaker
	logger   *logrus.Logger
}

// New resolves the configured provider through the locator. An empty or
// "none" provider disables image analysis.
func New(cfg Config, locator factory.ProviderLocator, logger *logrus.Logger) (Checker, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderNone {
		return Disabled{}, nil
	}
	if locator == nil {
		locator = factory.NewProviderLocator(nil)
	}
	client, err := locator.Get(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vision provider: %w", err)
	}
	return NewVisionChecker(provider, client, cfg, logger), nil
}

func NewVisionChecker(provider string, client providers.Client, cfg Config, logger *logrus.Logger) *VisionChecker {
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultBreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = DefaultBreakerCooldown
	}
	return &VisionChecker{
		client:   client,
		provider: provider,
		config: providers.Config{
			Credentials: providers.Credentials{
				APIKey:     cfg.APIKey,
				AwsBedrock: cfg.AWS,
			},
			Model:        cfg.Model,
			MaxTokens:    cfg.MaxTokens,
			SystemPrompt: systemPrompt,
			BaseURL:      cfg.BaseURL,
		},
		timeout: cfg.Timeout,
		breaker: httpx.NewCircuitBreaker("vision-"+provider, cfg.BreakerCooldown, cfg.BreakerFailures, logger),
		logger:  logger,
	}
}

func (c *VisionChecker) AnalyzeImage(
	ctx context.Context,
	topic moderation.Topic,
	title, content string,
	image *moderation.Image,
) moderation.ImageVerdict {
	if image == nil || len(image.Data) == 0 {
		return moderation.UnavailableImageVerdict("")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// copied per call, providers receive a pointer
	cfg := c.config
	prompt := BuildPrompt(topic, title, content)
	inline := &providers.InlineImage{MIMEType: image.MIMEType, Data: image.Data}

	var verdict moderation.ImageVerdict
	err := c.breaker.Execute(func() error {
		resp, err := c.client.Ask(ctx, &cfg, prompt, inline)
		if err != nil {
			return err
		}
		verdict, err = ParseAnswer(resp.Response)
		if err != nil {
			c.logger.WithError(err).WithField("provider", c.provider).Debug("unparsable vision answer")
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return nil
	})
	if err != nil {
		result := classifyError(ctx, err)
		prometheus.RecordExternalCall(metricsComponent, result)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"provider": c.provider,
			"result":   result,
		}).Warn("image analysis unavailable")
		return moderation.UnavailableImageVerdict("")
	}

	prometheus.RecordExternalCall(metricsComponent, prometheus.ResultOK)
	c.logger.WithFields(logrus.Fields{
		"provider":    c.provider,
		"appropriate": verdict.IsAppropriate,
		"relevant":    verdict.IsRelevant,
		"confidence":  verdict.Confidence,
	}).Debug("image analysed")
	return verdict
}

var errMalformed = errors.New("malformed vision answer")

func classifyError(ctx context.Context, err error) string {
	switch {
	case httpx.IsOpen(err):
		return prometheus.ResultBreakerOpen
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return prometheus.ResultTimeout
	case errors.Is(err, errMalformed), errors.Is(err, providers.ErrEmptyResponse):
		return prometheus.ResultMalformed
	default:
		return prometheus.ResultError
	}
}

// Disabled is used when no vision provider is configured.
type Disabled struct{}

func (Disabled) AnalyzeImage(context.Context, moderation.Topic, string, string, *moderation.Image) moderation.ImageVerdict {
	return moderation.UnavailableImageVerdict("Image analysis is not configured; the image was not verified")
}

// Stub returns a fixed verdict, or the result of Func when set.
type Stub struct {
	Verdict moderation.ImageVerdict
	Func    func(ctx context.Context, topic moderation.Topic, title, content string, image *moderation.Image) moderation.ImageVerdict
}

func (s *Stub) AnalyzeImage(
	ctx context.Context,
	topic moderation.Topic,
	title, content string,
	image *moderation.Image,
) moderation.ImageVerdict {
	if s.Func != nil {
		return s.Func(ctx, topic, title, content, image)
	}
	return s.Verdict
}
