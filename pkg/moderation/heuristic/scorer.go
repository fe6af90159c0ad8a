package heuristic

import (
	"strings"
	"unicode"

	"github.com/campushub/modgate/pkg/moderation"
)

const (
	maxScore = 100

	PenaltyRepeatedURLs  = 45
	PenaltyPromotional   = 30
	PenaltyPersonalInfo  = 15
	PenaltyOffTopic      = 10
	PenaltyShortContent  = 10
	PenaltyExcessiveCaps = 10

	DefaultMinScore         = 35
	DefaultMinContentLength = 10
	DefaultURLSpamThreshold = 3

	capsMinLetters = 20
	capsRatio      = 0.7
)

type Config struct {
	MinScore         int `mapstructure:"min_score"`
	MinContentLength int `mapstructure:"min_content_length"`
	URLSpamThreshold int `mapstructure:"url_spam_threshold"`
}

func DefaultConfig() Config {
	return Config{
		MinScore:         DefaultMinScore,
		MinContentLength: DefaultMinContentLength,
		URLSpamThreshold: DefaultURLSpamThreshold,
	}
}

// Scorer is the offline appropriateness heuristic. It holds no per-request
// state and cannot fail.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.MinScore <= 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = def.MinContentLength
	}
	if cfg.URLSpamThreshold <= 0 {
		cfg.URLSpamThreshold = def.URLSpamThreshold
	}
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Score(topic, title, content string) moderation.HeuristicVerdict {
	normalized := moderation.NormalizeTopic(topic)
	flags := moderation.NewFlags()
	score := maxScore
	full := title + "\n" + content

	if countDistinctURLs(full) >= s.cfg.URLSpamThreshold {
		score -= PenaltyRepeatedURLs
		flags.Add(moderation.FlagSpam)
	}
	if hasPromotionalPhrase(full) {
		score -= PenaltyPromotional
		flags.Add(moderation.FlagSpam)
	}
	if hasContactInfo(content) {
		score -= PenaltyPersonalInfo
		flags.Add(moderation.FlagPersonalInfo)
	}
	if isShouting(full) {
		score -= PenaltyExcessiveCaps
		flags.Add(moderation.FlagExcessiveCaps)
	}

	relevant := isRelevant(normalized, full)
	if !relevant {
		score -= PenaltyOffTopic
		flags.Add(moderation.FlagOffTopic)
	}

	if len([]rune(strings.TrimSpace(content))) < s.cfg.MinContentLength {
		score -= PenaltyShortContent
		flags.Add(moderation.FlagShortContent)
	}

	score = clamp(score, 0, maxScore)
	authentic := score >= s.cfg.MinScore && !flags.Has(moderation.FlagSpam)

	return moderation.HeuristicVerdict{
		Score:      score,
		IsRelevant: relevant,
		Flags:      flags,
		Topic:      normalized,
		Authentic:  authentic,
		Reason:     reason(authentic, relevant, flags),
	}
}

func reason(authentic, relevant bool, flags moderation.Flags) string {
	switch {
	case flags.Has(moderation.FlagSpam):
		return "Content looks like spam or promotional material"
	case !authentic:
		return "Content did not pass quality checks"
	case flags.Has(moderation.FlagPersonalInfo):
		return "Content appears appropriate; consider removing personal contact details"
	case !relevant:
		return "Content appears appropriate but may not fit the selected topic"
	default:
		return "Content appears authentic and appropriate"
	}
}

func countDistinctURLs(text string) int {
	seen := make(map[string]struct{})
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.ToLower(strings.TrimRight(u, ".,;:!?/"))
		u = strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
		u = strings.TrimPrefix(u, "www.")
		seen[u] = struct{}{}
	}
	return len(seen)
}

func hasPromotionalPhrase(text string) bool {
	for _, re := range promoPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func hasContactInfo(text string) bool {
	if emailPattern.MatchString(text) {
		return true
	}
	for _, re := range phonePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func isShouting(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters < capsMinLetters {
		return false
	}
	return float64(upper)/float64(letters) > capsRatio
}

func isRelevant(topic moderation.Topic, text string) bool {
	keywords, ok := topicKeywords[topic]
	if !ok {
		return true
	}
	tokens := tokenize(text)
	for _, k := range keywords {
		if _, hit := tokens[k]; hit {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
