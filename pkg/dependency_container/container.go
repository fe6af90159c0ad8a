package dependency_container

import (
	"errors"
	"fmt"

	"github.com/campushub/modgate/pkg/config"
	handlers "github.com/campushub/modgate/pkg/handlers/http"
	"github.com/campushub/modgate/pkg/infra/bedrock"
	"github.com/campushub/modgate/pkg/infra/events"
	"github.com/campushub/modgate/pkg/infra/httpx"
	providersFactory "github.com/campushub/modgate/pkg/infra/providers/factory"
	"github.com/campushub/modgate/pkg/moderation/engine"
	"github.com/campushub/modgate/pkg/moderation/heuristic"
	"github.com/campushub/modgate/pkg/moderation/lexicon"
	"github.com/campushub/modgate/pkg/moderation/multimodal"
	"github.com/campushub/modgate/pkg/moderation/toxicity"
	middleware "github.com/campushub/modgate/pkg/server/middleware"
	"github.com/campushub/modgate/pkg/version"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Scanner                *lexicon.Scanner
	Classifier             toxicity.Classifier
	Checker                multimodal.Checker
	Engine                 *engine.Engine
	Publisher              events.Publisher
	BedrockClient          bedrock.Client
	HandlerTransport       handlers.HandlerTransport
	PanicRecoverMiddleware middleware.Middleware
	RequestIDMiddleware    middleware.Middleware
	MetricsMiddleware      middleware.Middleware

	closers []func() error
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// Optional overrides, mostly for tests.
	HTTPClient    httpx.Client
	BedrockClient bedrock.Client
	Publisher     events.Publisher
}

func NewContainer(di ContainerDI) (*Container, error) {
	if di.Cfg == nil || di.Logger == nil {
		return nil, errors.New("config and logger are required")
	}
	mod := di.Cfg.Moderation

	table, err := lexicon.LoadTable(mod.Lexicon.Path)
	if err != nil {
		return nil, err
	}
	scanner, err := lexicon.NewScanner(
		table,
		lexicon.WithTiers(mod.LexiconTiers()...),
		lexicon.WithLeetFolding(mod.Lexicon.LeetFolding),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile term table: %w", err)
	}

	httpClient := di.HTTPClient
	if httpClient == nil {
		httpClient = httpx.NewFastHTTPClient(
			httpx.WithUserAgent(version.AppName + "/" + version.Version),
		)
	}
	classifier, err := toxicity.New(mod.ClassifierConfig(), httpClient, di.Logger)
	if err != nil {
		return nil, err
	}

	bedrockClient := di.BedrockClient
	if bedrockClient == nil {
		bedrockClient = bedrock.NewClient()
	}
	checker, err := multimodal.New(mod.Multimodal.Config, providersFactory.NewProviderLocator(bedrockClient), di.Logger)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.Dependencies{
		Scanner:    scanner,
		Scorer:     heuristic.NewScorer(mod.Heuristic),
		Classifier: classifier,
		Checker:    checker,
		Policy:     mod.Multimodal.Policy,
		Logger:     di.Logger,
	})
	if err != nil {
		return nil, err
	}

	container := &Container{
		Scanner:       scanner,
		Classifier:    classifier,
		Checker:       checker,
		Engine:        eng,
		BedrockClient: bedrockClient,
	}

	publisher := di.Publisher
	if publisher == nil {
		var closePublisher func() error
		publisher, closePublisher, err = events.NewPublisher(di.Cfg.Redis, di.Logger)
		if err != nil {
			return nil, err
		}
		container.closers = append(container.closers, closePublisher)
	}
	container.Publisher = publisher

	container.HandlerTransport = &handlers.HandlerTransportDTO{
		ModerateHandler: handlers.NewModerateHandler(handlers.ModerateHandlerDeps{
			Logger:         di.Logger,
			Moderator:      eng,
			Publisher:      publisher,
			MaxImageBytes:  mod.MaxImageBytes,
			RequestTimeout: di.Cfg.Server.RequestTimeout,
		}),
		GetVersionHandler: handlers.NewGetVersionHandler(di.Logger),
	}
	container.PanicRecoverMiddleware = middleware.NewPanicRecoverMiddleware(di.Logger)
	container.RequestIDMiddleware = middleware.NewRequestIDMiddleware()
	container.MetricsMiddleware = middleware.NewMetricsMiddleware(di.Logger)

	di.Logger.WithFields(logrus.Fields{
		"profile":         mod.Profile,
		"lexicon_version": scanner.Version(),
		"classifier":      mod.Classifier.Provider,
		"vision":          mod.Multimodal.Provider,
		"events_enabled":  di.Cfg.Redis.Enabled,
		"image_veto":      mod.Multimodal.ImageInappropriateVeto,
	}).Info("moderation engine initialised")

	return container, nil
}

// MiddlewareTransport orders the middlewares so that metrics observe the
// status written by the panic handler.
func (c *Container) MiddlewareTransport() *middleware.Transport {
	return middleware.NewTransport(
		c.RequestIDMiddleware,
		c.MetricsMiddleware,
		c.PanicRecoverMiddleware,
	)
}

func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
