package multimodal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/campushub/modgate/pkg/moderation"
	"github.com/mitchellh/mapstructure"
)

// DefaultConfidence is used when the model omits a confidence value.
const DefaultConfidence = 70

var (
	ErrNoJSONObject = errors.New("no JSON object in model answer")
	ErrNoVerdict    = errors.New("model answer carries no appropriateness verdict")
)

type imageAnalysis struct {
	IsAppropriate *bool   `mapstructure:"isAppropriate"`
	IsRelevant    *bool   `mapstructure:"isRelevant"`
	Description   *string `mapstructure:"description"`
}

type answer struct {
	IsAuthentic   *bool          `mapstructure:"isAuthentic"`
	IsAppropriate *bool          `mapstructure:"isAppropriate"`
	Confidence    *float64       `mapstructure:"confidence"`
	Reason        *string        `mapstructure:"reason"`
	ImageAnalysis *imageAnalysis `mapstructure:"imageAnalysis"`
}

// ParseAnswer turns a free-form model answer into an ImageVerdict. It
// tolerates code fences, prose around the object, snake_case keys and
// stringly typed values.
func ParseAnswer(text string) (moderation.ImageVerdict, error) {
	raw, err := extractObject(stripFences(text))
	if err != nil {
		return moderation.ImageVerdict{}, err
	}

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return moderation.ImageVerdict{}, fmt.Errorf("invalid JSON in model answer: %w", err)
	}

	var a answer
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       trimPercent,
		Result:           &a,
	})
	if err != nil {
		return moderation.ImageVerdict{}, err
	}
	if err := decoder.Decode(normalizeKeys(generic)); err != nil {
		return moderation.ImageVerdict{}, fmt.Errorf("failed to decode model answer: %w", err)
	}

	return a.verdict()
}

func (a answer) verdict() (moderation.ImageVerdict, error) {
	v := moderation.ImageVerdict{
		Available:     true,
		IsAppropriate: true,
		IsRelevant:    true,
		Confidence:    DefaultConfidence,
	}

	appropriate := a.IsAppropriate
	if a.ImageAnalysis != nil {
		if a.ImageAnalysis.IsAppropriate != nil {
			appropriate = a.ImageAnalysis.IsAppropriate
		}
		if a.ImageAnalysis.IsRelevant != nil {
			v.IsRelevant = *a.ImageAnalysis.IsRelevant
		}
		if a.ImageAnalysis.Description != nil {
			v.Description = strings.TrimSpace(*a.ImageAnalysis.Description)
		}
	}
	if appropriate == nil && a.ImageAnalysis == nil {
		return moderation.ImageVerdict{}, ErrNoVerdict
	}
	if appropriate != nil {
		v.IsAppropriate = *appropriate
	}
	if v.Description == "" && a.Reason != nil {
		v.Description = strings.TrimSpace(*a.Reason)
	}
	if a.Confidence != nil {
		v.Confidence = scaleConfidence(*a.Confidence)
	}
	return v, nil
}

// scaleConfidence maps a 0-1 fraction or a 0-100 percentage onto 0-100.
func scaleConfidence(c float64) int {
	if math.IsNaN(c) {
		return DefaultConfidence
	}
	if c > 0 && c <= 1 {
		c *= 100
	}
	c = math.Round(c)
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return int(c)
	}
}

func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// extractObject returns the first {...} in text that is well-formed JSON.
// Balanced but invalid candidates such as "{nudity, gore}" are skipped.
func extractObject(text string) (string, error) {
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		if end, ok := balancedEnd(text, start); ok && json.Valid([]byte(text[start:end])) {
			return text[start:end], nil
		}
		offset = start + 1
	}
	return "", ErrNoJSONObject
}

// balancedEnd finds the index just past the brace closing the one at start,
// honouring string literals and escapes.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

var keyReplacer = strings.NewReplacer("_", "", "-", "")

// normalizeKeys folds is_appropriate / image-analysis style keys so that
// mapstructure's case-insensitive matching picks them up.
func normalizeKeys(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]interface{}); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(keyReplacer.Replace(k))] = v
	}
	return out
}

func trimPercent(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string)) //nolint:errcheck
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		return strings.TrimSpace(strings.TrimSuffix(s, "%")), nil
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "yes", "y":
			return "true", nil
		case "no", "n":
			return "false", nil
		}
		return s, nil
	}
	return data, nil
}
