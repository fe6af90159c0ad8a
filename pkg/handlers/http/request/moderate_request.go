package request

import (
	"strings"

	"github.com/campushub/modgate/pkg/moderation"
)

type ModerateRequest struct {
	Topic    string `json:"topic"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (r *ModerateRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return moderation.ErrMissingTopic
	}
	if strings.TrimSpace(r.Content) == "" {
		return moderation.ErrMissingContent
	}
	return nil
}

// ToModeration validates the payload and decodes the inline image, if any.
func (r *ModerateRequest) ToModeration(maxImageBytes int) (moderation.Request, error) {
	if err := r.Validate(); err != nil {
		return moderation.Request{}, err
	}
	req := moderation.Request{
		Topic:   r.Topic,
		Title:   r.Title,
		Content: r.Content,
	}
	if strings.TrimSpace(r.ImageURL) != "" {
		img, err := moderation.ParseDataURL(r.ImageURL, maxImageBytes)
		if err != nil {
			return moderation.Request{}, err
		}
		req.Image = img
	}
	return req, nil
}
