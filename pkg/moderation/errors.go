package moderation

import "errors"

var (
	ErrMissingTopic        = errors.New("topic is required")
	ErrMissingContent      = errors.New("content is required")
	ErrUnsupportedImageRef = errors.New("imageUrl must be an inline data URL")
	ErrInvalidImage        = errors.New("imageUrl does not contain a valid image")
	ErrImageTooLarge       = errors.New("image exceeds the maximum allowed size")
)

// IsInputError reports whether err was caused by the submitted payload.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingTopic) ||
		errors.Is(err, ErrMissingContent) ||
		errors.Is(err, ErrUnsupportedImageRef) ||
		errors.Is(err, ErrInvalidImage) ||
		errors.Is(err, ErrImageTooLarge)
}
