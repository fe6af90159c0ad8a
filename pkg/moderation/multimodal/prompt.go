package multimodal

import (
	"fmt"
	"strings"

	"github.com/campushub/modgate/pkg/moderation"
)

const systemPrompt = "You review images attached to posts on a university campus board. " +
	"Answer with a single JSON object and nothing else."

var topicDescriptions = map[moderation.Topic]string{
	moderation.TopicLostFound: "a lost or found item report",
	moderation.TopicEvent:     "a campus event announcement",
	moderation.TopicAcademic:  "an academic resource or study material",
	moderation.TopicGeneric:   "a general campus post",
}

// BuildPrompt renders the instruction sent alongside the image.
func BuildPrompt(topic moderation.Topic, title, content string) string {
	desc, ok := topicDescriptions[topic]
	if !ok {
		desc = topicDescriptions[moderation.TopicGeneric]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The post is %s (category %q).\n", desc, string(topic))
	if t := strings.TrimSpace(title); t != "" {
		fmt.Fprintf(&b, "Title: %s\n", t)
	}
	fmt.Fprintf(&b, "Content: %s\n\n", strings.TrimSpace(content))
	b.WriteString("Check whether the attached image is appropriate for a campus audience " +
		"(no nudity, gore, hate symbols or harassment), whether it is relevant to the post, " +
		"and whether the post looks authentic.\n")
	b.WriteString("Respond with JSON of exactly this shape:\n")
	b.WriteString(`{"isAuthentic": true, "isAppropriate": true, "confidence": 0-100, "reason": "short explanation", ` +
		`"imageAnalysis": {"isAppropriate": true, "isRelevant": true, "description": "one sentence describing the image"}}`)
	return b.String()
}
