// Package composer merges the per-component signals of one submission into
// the final verdict. It is pure: no I/O, no clock, no shared state.
package composer

import (
	"github.com/campushub/modgate/pkg/moderation"
)

const (
	ReasonToxicContent       = "Content was classified as toxic or hateful and cannot be published"
	ReasonInappropriateImage = "The attached image is not appropriate for the platform"
)

// Signals holds one result per pipeline component. Image is nil when the
// submission carried no image.
type Signals struct {
	Rule       moderation.RuleVerdict
	Classifier moderation.ClassifierVerdict
	Heuristic  moderation.HeuristicVerdict
	Image      *moderation.ImageVerdict
}

type Policy struct {
	// ImageInappropriateVeto rejects a submission whose image was judged
	// inappropriate by an available vision check.
	ImageInappropriateVeto bool `mapstructure:"inappropriate_veto"`
}

func DefaultPolicy() Policy {
	return Policy{ImageInappropriateVeto: true}
}

func Compose(s Signals, p Policy) moderation.Verdict {
	classifierFlags := classifierFlags(s.Classifier)

	switch {
	case s.Rule.Triggered:
		return hateSpeech(s, s.Rule.Message(), s.Rule.Flags.Union(s.Heuristic.Flags, classifierFlags))
	case s.Classifier.Available && s.Classifier.Flagged:
		return hateSpeech(s, ReasonToxicContent, classifierFlags.Union(s.Heuristic.Flags))
	}

	flags := s.Heuristic.Flags.Union(classifierFlags)
	confidence := clampScore(s.Heuristic.Score)
	authentic := s.Heuristic.Authentic
	reason := s.Heuristic.Reason

	imageVetoed := false
	if img := s.Image; img != nil && img.Available {
		if !img.IsAppropriate {
			flags.Add(moderation.FlagInappropriateImage)
			imageVetoed = p.ImageInappropriateVeto
		}
		if !img.IsRelevant {
			flags.Add(moderation.FlagImageNotRelevant)
		}
		if c := clampScore(img.Confidence); c < confidence {
			confidence = c
		}
	}
	if imageVetoed {
		authentic = false
		reason = ReasonInappropriateImage
	}

	return moderation.Verdict{
		IsAuthentic:     authentic,
		ConfidenceScore: confidence,
		Reason:          reason,
		Flags:           flags,
		ImageAnalysis:   s.Image,
	}
}

func hateSpeech(s Signals, reason string, flags moderation.Flags) moderation.Verdict {
	return moderation.Verdict{
		IsAuthentic:        false,
		ConfidenceScore:    0,
		Reason:             reason,
		Flags:              flags,
		HateSpeechDetected: true,
		HateSpeechReason:   reason,
		ImageAnalysis:      s.Image,
	}
}

func classifierFlags(c moderation.ClassifierVerdict) moderation.Flags {
	if c.Available && c.Flagged {
		return moderation.NewFlags(moderation.FlagToxicContent)
	}
	return nil
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
