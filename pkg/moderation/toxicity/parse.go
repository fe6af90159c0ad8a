package toxicity

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

type labelScore struct {
	Label string
	Score float64
}

var errEmptyScores = errors.New("response carried no label scores")

// parseHuggingFace accepts both [{label,score}] and [[{label,score}]].
func parseHuggingFace(body []byte) ([]labelScore, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid classifier response: %w", err)
	}
	if v.Type() == fastjson.TypeObject && v.Exists("error") {
		return nil, fmt.Errorf("classifier returned error: %s", v.GetStringBytes("error"))
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("invalid classifier response: %w", err)
	}
	if len(items) > 0 && items[0].Type() == fastjson.TypeArray {
		items = items[0].GetArray()
	}

	scores := make([]labelScore, 0, len(items))
	for _, item := range items {
		if item.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("invalid classifier response: unexpected %s entry", item.Type())
		}
		label := item.GetStringBytes("label")
		score := item.Get("score")
		if len(label) == 0 || score == nil {
			return nil, errors.New("invalid classifier response: entry without label or score")
		}
		f, err := score.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid classifier response: %w", err)
		}
		scores = append(scores, labelScore{Label: string(label), Score: f})
	}
	if len(scores) == 0 {
		return nil, errEmptyScores
	}
	return scores, nil
}

// parseOpenAI reads results[0].category_scores of a moderation response.
func parseOpenAI(body []byte) ([]labelScore, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation response: %w", err)
	}
	categories := v.GetObject("results", "0", "category_scores")
	if categories == nil {
		return nil, errors.New("invalid moderation response: missing results[0].category_scores")
	}

	var (
		scores   []labelScore
		visitErr error
	)
	categories.Visit(func(key []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}
		f, err := val.Float64()
		if err != nil {
			visitErr = fmt.Errorf("invalid moderation response: category %s: %w", key, err)
			return
		}
		scores = append(scores, labelScore{Label: string(key), Score: f})
	})
	if visitErr != nil {
		return nil, visitErr
	}
	if len(scores) == 0 {
		return nil, errEmptyScores
	}
	return scores, nil
}
