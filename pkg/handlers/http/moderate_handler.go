package http

import (
	"context"
	"errors"
	"time"

	"github.com/campushub/modgate/pkg/handlers/http/request"
	"github.com/campushub/modgate/pkg/infra/events"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/campushub/modgate/pkg/moderation/engine"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDLocalKey = "request_id"

	defaultRequestTimeout = 12 * time.Second
	publishTimeout        = 2 * time.Second
)

type ModerateHandlerDeps struct {
	Logger        *logrus.Logger
	Moderator     engine.Moderator
	Publisher     events.Publisher
	MaxImageBytes int
	// RequestTimeout bounds the whole pipeline, external calls included.
	RequestTimeout time.Duration
}

type moderateHandler struct {
	logger         *logrus.Logger
	moderator      engine.Moderator
	publisher      events.Publisher
	maxImageBytes  int
	requestTimeout time.Duration
}

func NewModerateHandler(deps ModerateHandlerDeps) Handler {
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	return &moderateHandler{
		logger:         deps.Logger,
		moderator:      deps.Moderator,
		publisher:      deps.Publisher,
		maxImageBytes:  deps.MaxImageBytes,
		requestTimeout: deps.RequestTimeout,
	}
}

// Handle @Summary Moderate a submission
// @Description Runs the lexical scan, toxicity classifier, heuristic and optional image check and returns one verdict.
// @Description A rejection is a normal 200 response.
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body request.ModerateRequest true "Submission to moderate"
// @Success 200 {object} moderation.Verdict "Verdict"
// @Failure 400 {object} map[string]interface{} "Invalid submission"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/moderate [post]
func (h *moderateHandler) Handle(c *fiber.Ctx) error {
	log := h.logger.WithField("request_id", requestID(c))

	var req request.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		log.WithError(err).Debug("failed to parse moderation request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request body must be a JSON object"})
	}

	modReq, err := req.ToModeration(h.maxImageBytes)
	if err != nil {
		log.WithError(err).Debug("invalid moderation request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": inputErrorMessage(err)})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.requestTimeout)
	defer cancel()

	verdict, err := h.moderator.Moderate(ctx, modReq)
	if err != nil {
		if moderation.IsInputError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": inputErrorMessage(err)})
		}
		log.WithError(err).Error("moderation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	h.publishVerdict(log, moderation.NormalizeTopic(modReq.Topic), verdict)

	return c.Status(fiber.StatusOK).JSON(verdict)
}

func (h *moderateHandler) publishVerdict(log *logrus.Entry, topic moderation.Topic, verdict moderation.Verdict) {
	ev := events.NewVerdictEvent(uuid.NewString(), time.Now(), topic, verdict)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.publisher.Publish(ctx, ev); err != nil {
			log.WithError(err).WithField("event_id", ev.ID).Warn("failed to publish verdict event")
		}
	}()
}

// requestID detaches the id from the fiber context; the log entry outlives
// the request in publishVerdict.
func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDLocalKey).(string)
	return utils.CopyString(id)
}

// inputErrorMessage keeps the sentinel text and drops decoder detail.
func inputErrorMessage(err error) string {
	for _, sentinel := range []error{
		moderation.ErrMissingTopic,
		moderation.ErrMissingContent,
		moderation.ErrUnsupportedImageRef,
		moderation.ErrImageTooLarge,
		moderation.ErrInvalidImage,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "invalid request"
}
