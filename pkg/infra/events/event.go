package events

import (
	"time"

	"github.com/campushub/modgate/pkg/moderation"
)

type Event interface {
	Type() string
}

const VerdictEventType = "moderation.verdict"

// VerdictEvent is the summary broadcast after each successful moderation.
// It never carries submission text or the lexical match.
type VerdictEvent struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Outcome    string    `json:"outcome"`
	Confidence int       `json:"confidence"`
	Flags      []string  `json:"flags"`
	HateSpeech bool      `json:"hate_speech"`
	ImageCheck bool      `json:"image_checked"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e VerdictEvent) Type() string {
	return VerdictEventType
}

func NewVerdictEvent(id string, at time.Time, topic moderation.Topic, v moderation.Verdict) VerdictEvent {
	return VerdictEvent{
		ID:         id,
		Topic:      string(topic),
		Outcome:    v.Outcome(),
		Confidence: v.ConfidenceScore,
		Flags:      v.Flags.Sorted(),
		HateSpeech: v.HateSpeechDetected,
		ImageCheck: v.ImageAnalysis != nil,
		Timestamp:  at.UTC(),
	}
}
