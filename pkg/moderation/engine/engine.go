package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/campushub/modgate/pkg/moderation/composer"
	"github.com/campushub/modgate/pkg/moderation/multimodal"
	"github.com/campushub/modgate/pkg/moderation/toxicity"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StageLexicon    = "lexicon"
	StageClassifier = "classifier"
	StageHeuristic  = "heuristic"
	StageImage      = "image"
	StageCompose    = "compose"
)

var ErrInternal = errors.New("internal moderation fault")

type RuleScanner interface {
	Scan(title, content string) moderation.RuleVerdict
}

type HeuristicScorer interface {
	Score(topic, title, content string) moderation.HeuristicVerdict
}

// Moderator is the engine as seen by transports.
type Moderator interface {
	Moderate(ctx context.Context, req moderation.Request) (moderation.Verdict, error)
}

type Dependencies struct {
	Scanner    RuleScanner
	Scorer     HeuristicScorer
	Classifier toxicity.Classifier
	Checker    multimodal.Checker
	Policy     composer.Policy
	Logger     *logrus.Logger
}

type Engine struct {
	scanner    RuleScanner
	scorer     HeuristicScorer
	classifier toxicity.Classifier
	checker    multimodal.Checker
	policy     composer.Policy
	logger     *logrus.Logger
}

func New(deps Dependencies) (*Engine, error) {
	if deps.Scanner == nil {
		return nil, errors.New("engine: rule scanner is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("engine: heuristic scorer is required")
	}
	if deps.Classifier == nil {
		deps.Classifier = toxicity.Disabled{}
	}
	if deps.Checker == nil {
		deps.Checker = multimodal.Disabled{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Engine{
		scanner:    deps.Scanner,
		scorer:     deps.Scorer,
		classifier: deps.Classifier,
		checker:    deps.Checker,
		policy:     deps.Policy,
		logger:     deps.Logger,
	}, nil
}

// Moderate runs the full pipeline for one submission. The only errors
// returned are input errors (see moderation.IsInputError) and ErrInternal.
func (e *Engine) Moderate(ctx context.Context, req moderation.Request) (verdict moderation.Verdict, err error) {
	if err := req.Validate(); err != nil {
		return moderation.Verdict{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("moderation pipeline panicked")
			verdict = moderation.Verdict{}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	topic := moderation.NormalizeTopic(req.Topic)
	log := e.logger.WithField("topic", topic)

	var signals composer.Signals
	timed(StageLexicon, func() {
		signals.Rule = e.scanner.Scan(req.Title, req.Content)
	})

	if signals.Rule.Triggered {
		timed(StageHeuristic, func() {
			signals.Heuristic = e.scorer.Score(string(topic), req.Title, req.Content)
		})
		log.WithFields(logrus.Fields{
			"reason_code":  signals.Rule.ReasonCode,
			"matched_term": signals.Rule.MatchedTerm,
		}).Warn("lexical rule triggered")
	} else if err := e.gatherSignals(ctx, topic, req, &signals); err != nil {
		log.WithError(err).Error("moderation stage failed")
		return moderation.Verdict{}, err
	}

	timed(StageCompose, func() {
		verdict = composer.Compose(signals, e.policy)
	})

	prometheus.RecordVerdict(string(topic), verdict.Outcome())
	log.WithFields(logrus.Fields{
		"outcome":              verdict.Outcome(),
		"confidence":           verdict.ConfidenceScore,
		"flags":                verdict.Flags.Sorted(),
		"classifier_available": signals.Classifier.Available,
		"image_present":        req.Image != nil,
	}).Info("moderation verdict")

	return verdict, nil
}

// gatherSignals runs the classifier and image check concurrently with the
// heuristic. Stages never return errors; only a panic fails the group.
func (e *Engine) gatherSignals(ctx context.Context, topic moderation.Topic, req moderation.Request, signals *composer.Signals) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(guard(StageClassifier, func() {
		signals.Classifier = e.classifier.Classify(gctx, req.Title, req.Content)
	}))

	if req.Image != nil {
		g.Go(guard(StageImage, func() {
			v := e.checker.AnalyzeImage(gctx, topic, req.Title, req.Content, req.Image)
			signals.Image = &v
		}))
	}

	if err := guard(StageHeuristic, func() {
		signals.Heuristic = e.scorer.Score(string(topic), req.Title, req.Content)
	})(); err != nil {
		_ = g.Wait() //nolint:errcheck
		return err
	}

	return g.Wait()
}

func guard(stage string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: stage %s panicked: %v", ErrInternal, stage, r)
			}
		}()
		timed(stage, fn)
		return nil
	}
}

func timed(stage string, fn func()) {
	start := time.Now()
	fn()
	prometheus.ObserveStage(stage, time.Since(start))
}
