package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/campushub/modgate/pkg/infra/httpx"
	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/sirupsen/logrus"
)

const metricsComponent = "classifier"

// Classifier scores text for toxicity. Implementations never fail: any
// problem is reported as an unavailable verdict.
type Classifier interface {
	Classify(ctx context.Context, title, content string) moderation.ClassifierVerdict
}

var errMalformed = errors.New("malformed classifier response")

type errStatus struct {
	code int
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("classifier responded with status %d", e.code)
}

type HTTPClassifier struct {
	client  httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
	config  Config
	toxic   map[string]struct{}
	parse   func([]byte) ([]labelScore, error)
}

// New returns the classifier selected by cfg.Provider. The "none" provider
// yields a classifier that is always unavailable.
func New(cfg Config, client httpx.Client, logger *logrus.Logger) (Classifier, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case ProviderNone:
		return Disabled{}, nil
	case ProviderHuggingFace, ProviderOpenAI:
		return NewHTTPClassifier(cfg, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

func NewHTTPClassifier(cfg Config, client httpx.Client, logger *logrus.Logger) *HTTPClassifier {
	cfg = cfg.withDefaults()
	if client == nil {
		client = httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.Timeout))
	}
	if logger == nil {
		logger = logrus.New()
	}
	toxic := make(map[string]struct{}, len(cfg.ToxicLabels))
	for _, l := range cfg.ToxicLabels {
		toxic[NormalizeLabel(l)] = struct{}{}
	}
	c := &HTTPClassifier{
		client:  client,
		breaker: httpx.NewCircuitBreaker("toxicity-"+cfg.Provider, cfg.BreakerCooldown, cfg.BreakerFailures, logger),
		logger:  logger,
		config:  cfg,
		toxic:   toxic,
		parse:   parseHuggingFace,
	}
	if cfg.Provider == ProviderOpenAI {
		c.parse = parseOpenAI
	}
	return c
}

func (c *HTTPClassifier) Threshold() float64 {
	return c.config.Threshold
}

func (c *HTTPClassifier) Classify(ctx context.Context, title, content string) moderation.ClassifierVerdict {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var scores []labelScore
	err := c.breaker.Execute(func() error {
		var callErr error
		scores, callErr = c.call(ctx, joinText(title, content))
		return callErr
	})
	if err != nil {
		result := classifyError(ctx, err)
		prometheus.RecordExternalCall(metricsComponent, result)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"provider": c.config.Provider,
			"result":   result,
		}).Warn("toxicity classifier unavailable")
		return moderation.ClassifierVerdict{Available: false}
	}
	prometheus.RecordExternalCall(metricsComponent, prometheus.ResultOK)

	verdict := c.score(scores)
	c.logger.WithFields(logrus.Fields{
		"provider": c.config.Provider,
		"score":    verdict.ToxicScore,
		"label":    verdict.Label,
		"flagged":  verdict.Flagged,
	}).Debug("toxicity classified")
	return verdict
}

func (c *HTTPClassifier) score(scores []labelScore) moderation.ClassifierVerdict {
	verdict := moderation.ClassifierVerdict{Available: true}
	for _, s := range scores {
		label := NormalizeLabel(s.Label)
		if _, ok := c.toxic[label]; !ok {
			continue
		}
		score := clamp01(s.Score)
		if score > verdict.ToxicScore || verdict.Label == "" {
			verdict.ToxicScore = score
			verdict.Label = label
		}
	}
	verdict.Flagged = verdict.ToxicScore > c.config.Threshold
	return verdict
}

func (c *HTTPClassifier) call(ctx context.Context, text string) ([]labelScore, error) {
	body, err := c.requestBody(text)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("classifier response read error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errStatus{code: resp.StatusCode}
	}
	scores, err := c.parse(respBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return scores, nil
}

func (c *HTTPClassifier) requestBody(text string) ([]byte, error) {
	if c.config.Provider == ProviderOpenAI {
		return json.Marshal(map[string]string{
			"input": text,
			"model": c.config.Model,
		})
	}
	return json.Marshal(map[string]string{"inputs": text})
}

func classifyError(ctx context.Context, err error) string {
	var status *errStatus
	switch {
	case httpx.IsOpen(err):
		return prometheus.ResultBreakerOpen
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return prometheus.ResultTimeout
	case errors.As(err, &status):
		return prometheus.ResultError
	case errors.Is(err, errMalformed):
		return prometheus.ResultMalformed
	default:
		return prometheus.ResultError
	}
}

func joinText(title, content string) string {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return content
	}
	return title + "\n" + content
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Disabled is used when no classifier is configured.
type Disabled struct{}

func (Disabled) Classify(context.Context, string, string) moderation.ClassifierVerdict {
	return moderation.ClassifierVerdict{Available: false}
}

// Stub returns a fixed verdict, or the result of Func when set.
type Stub struct {
	Verdict moderation.ClassifierVerdict
	Func    func(ctx context.Context, title, content string) moderation.ClassifierVerdict
}

func (s *Stub) Classify(ctx context.Context, title, content string) moderation.ClassifierVerdict {
	if s.Func != nil {
		return s.Func(ctx, title, content)
	}
	return s.Verdict
}
