package moderation

import "strings"

type Topic string

const (
	TopicLostFound Topic = "lost-found"
	TopicEvent     Topic = "event"
	TopicAcademic  Topic = "academic"
	TopicGeneric   Topic = "generic"
)

var topicAliases = map[string]Topic{
	"lost-found":        TopicLostFound,
	"lost_found":        TopicLostFound,
	"lostfound":         TopicLostFound,
	"lost":              TopicLostFound,
	"found":             TopicLostFound,
	"lost-and-found":    TopicLostFound,
	"lost_and_found":    TopicLostFound,
	"lost and found":    TopicLostFound,
	"lost & found":      TopicLostFound,
	"event":             TopicEvent,
	"events":            TopicEvent,
	"academic":          TopicAcademic,
	"academics":         TopicAcademic,
	"resource":          TopicAcademic,
	"resources":         TopicAcademic,
	"study":             TopicAcademic,
	"academic-resource": TopicAcademic,
	"academic_resource": TopicAcademic,
}

// NormalizeTopic maps a free-form category tag onto one of the known topics.
// Anything unrecognised is generic.
func NormalizeTopic(raw string) Topic {
	key := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := topicAliases[key]; ok {
		return t
	}
	return TopicGeneric
}

type Image struct {
	MIMEType string
	Data     []byte
}

// Request is one submission to moderate. It is never mutated by the pipeline.
type Request struct {
	Topic   string
	Title   string
	Content string
	Image   *Image
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrMissingTopic
	}
	if strings.TrimSpace(r.Content) == "" {
		return ErrMissingContent
	}
	return nil
}

type ReasonCode string

const (
	ReasonSevereLanguage ReasonCode = "severe_language"
	ReasonThreat         ReasonCode = "threat"
	ReasonNone           ReasonCode = "none"
)

type RuleVerdict struct {
	Triggered  bool
	ReasonCode ReasonCode
	// MatchedTerm is kept for server-side diagnostics and must never reach a response.
	MatchedTerm string
	Flags       Flags
}

// Message is the user-facing explanation for a triggered rule.
func (r RuleVerdict) Message() string {
	switch r.ReasonCode {
	case ReasonSevereLanguage:
		return "Content contains hateful or offensive language and cannot be published"
	case ReasonThreat:
		return "Content contains threatening or violent language and cannot be published"
	default:
		return ""
	}
}

type ClassifierVerdict struct {
	Available  bool
	ToxicScore float64
	Label      string
	// Flagged is set when ToxicScore exceeded the deployment threshold.
	Flagged bool
}

type HeuristicVerdict struct {
	Score      int
	IsRelevant bool
	Flags      Flags
	Topic      Topic
	Authentic  bool
	Reason     string
}

type ImageVerdict struct {
	Available     bool   `json:"-"`
	IsAppropriate bool   `json:"isAppropriate"`
	IsRelevant    bool   `json:"isRelevant"`
	Description   string `json:"description"`
	Confidence    int    `json:"confidence"`
}

const UnavailableImageConfidence = 40

// UnavailableImageVerdict is the pass-by-default result used whenever the
// image could not be analysed.
func UnavailableImageVerdict(description string) ImageVerdict {
	if description == "" {
		description = "Image analysis was unavailable; the image was not verified"
	}
	return ImageVerdict{
		Available:     false,
		IsAppropriate: true,
		IsRelevant:    true,
		Description:   description,
		Confidence:    UnavailableImageConfidence,
	}
}

type Verdict struct {
	IsAuthentic        bool          `json:"isAuthentic"`
	ConfidenceScore    int           `json:"confidenceScore"`
	Reason             string        `json:"reason"`
	Flags              Flags         `json:"flags,omitempty"`
	HateSpeechDetected bool          `json:"hateSpeechDetected"`
	HateSpeechReason   string        `json:"hateSpeechReason,omitempty"`
	ImageAnalysis      *ImageVerdict `json:"imageAnalysis,omitempty"`
}

// Outcome is a low-cardinality label for metrics and events.
func (v Verdict) Outcome() string {
	switch {
	case v.HateSpeechDetected:
		return "hate_speech"
	case v.IsAuthentic:
		return "accepted"
	default:
		return "rejected"
	}
}
