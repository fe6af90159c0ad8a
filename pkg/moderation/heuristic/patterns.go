package heuristic

import (
	"regexp"

	"github.com/campushub/modgate/pkg/moderation"
)

var (
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'()]+`)

	promoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bclick\s+(?:here|this\s+link|the\s+link)\b`),
		regexp.MustCompile(`(?i)\b(?:buy|order|shop|subscribe)\s+now\b`),
		regexp.MustCompile(`(?i)\blimited\s+(?:time\s+)?(?:offer|deal)\b`),
		regexp.MustCompile(`(?i)\bact\s+(?:now|fast)\b`),
		regexp.MustCompile(`(?i)\bwin\s+(?:free\s+)?(?:cash|money|\$\s?\d+|an?\s+iphone)`),
		regexp.MustCompile(`(?i)\bclaim\s+your\s+(?:prize|gift|cash)\b`),
		regexp.MustCompile(`(?i)\bfree\s+(?:cash|money|iphone|followers|crypto|bitcoin)\b`),
		regexp.MustCompile(`(?i)\b(?:earn|make)\s+(?:\$\s?\d+|money|cash)\s+(?:fast|online|from\s+home|per\s+day|a\s+day|daily)\b`),
		regexp.MustCompile(`(?i)\b100%\s+(?:free|guaranteed)`),
		regexp.MustCompile(`(?i)\b(?:promo|discount|coupon|referral)\s+code\b`),
		regexp.MustCompile(`(?i)\b(?:dm|whatsapp|telegram)\s+me\s+for\s+(?:price|prices|discount|offers?|deals?)\b`),
		regexp.MustCompile(`(?i)\b(?:crypto|bitcoin|nft|forex)\s+(?:giveaway|investment|opportunity|signals)\b`),
		regexp.MustCompile(`(?i)\bguaranteed\s+(?:income|returns|profit)\b`),
		regexp.MustCompile(`(?i)\bwork\s+from\s+home\s+(?:opportunity|job)\b`),
	}

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|\D)\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}(?:$|\D)`),
		regexp.MustCompile(`\+\d{1,3}[\s.-]?\d(?:[\s.-]?\d){6,11}\b`),
		regexp.MustCompile(`\b(?:\+34|0034)?[- ]?[6-9]\d{8}\b`),
	}
)

// topicKeywords is the per-topic relevance vocabulary. Generic has none and
// is always relevant.
var topicKeywords = map[moderation.Topic][]string{
	moderation.TopicLostFound: {
		"lost", "found", "missing", "item", "items", "campus", "left", "misplaced",
		"wallet", "phone", "keys", "key", "bag", "backpack", "id", "card", "laptop",
		"umbrella", "bottle", "jacket", "return", "returned", "owner", "belongs",
		"dropped", "near", "reward", "claim", "perdido", "encontrado",
	},
	moderation.TopicEvent: {
		"event", "events", "workshop", "date", "time", "location", "venue", "seminar",
		"meetup", "club", "join", "register", "registration", "talk", "conference",
		"session", "party", "concert", "tonight", "tomorrow", "schedule", "rsvp",
		"hackathon", "fair", "festival", "lecture", "webinar", "pm", "am", "evento",
	},
	moderation.TopicAcademic: {
		"study", "studying", "notes", "course", "class", "exam", "exams", "lecture",
		"assignment", "textbook", "book", "resource", "resources", "tutorial",
		"homework", "syllabus", "professor", "lab", "research", "guide", "quiz",
		"semester", "chapter", "pdf", "slides", "practice", "review", "thesis",
		"apuntes", "examen",
	},
}
