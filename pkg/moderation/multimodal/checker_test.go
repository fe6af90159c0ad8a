package multimodal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campushub/modgate/pkg/infra/providers"
	"github.com/campushub/modgate/pkg/infra/providers/mocks"
	"github.com/campushub/modgate/pkg/moderation"
	"github.com/campushub/modgate/pkg/moderation/multimodal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testImage = &moderation.Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func TestVisionChecker_Available(t *testing.T) {
	client := new(mocks.Client)
	client.On("Ask", mock.Anything, mock.MatchedBy(func(cfg *providers.Config) bool {
		return cfg.Credentials.APIKey == "key" && cfg.Model == "gpt-4o-mini" && cfg.SystemPrompt != ""
	}), mock.MatchedBy(func(prompt string) bool {
		return assert.ObjectsAreEqual(multimodal.BuildPrompt(moderation.TopicEvent, "Gala", "Spring gala tonight"), prompt)
	}), mock.MatchedBy(func(img *providers.InlineImage) bool {
		return img.MIMEType == "image/png" && len(img.Data) == 4
	})).Return(&providers.CompletionResponse{
		Response: `{"confidence": 88, "imageAnalysis": {"isAppropriate": true, "isRelevant": false, "description": "a sunset"}}`,
	}, nil)

	c := multimodal.NewVisionChecker("openai", client, multimodal.Config{APIKey: "key", Model: "gpt-4o-mini"}, logrus.New())
	v := c.AnalyzeImage(context.Background(), moderation.TopicEvent, "Gala", "Spring gala tonight", testImage)

	assert.True(t, v.Available)
	assert.True(t, v.IsAppropriate)
	assert.False(t, v.IsRelevant)
	assert.Equal(t, 88, v.Confidence)
	assert.Equal(t, "a sunset", v.Description)
	client.AssertExpectations(t)
}

func TestVisionChecker_RejectionAfterProseBraces(t *testing.T) {
	client := new(mocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&providers.CompletionResponse{
		Response: "Checklist {nudity, gore} reviewed.\n{\"isAppropriate\": false, \"confidence\": 90}",
	}, nil)

	c := multimodal.NewVisionChecker("openai", client, multimodal.Config{APIKey: "key"}, logrus.New())
	v := c.AnalyzeImage(context.Background(), moderation.TopicEvent, "", "Spring gala tonight", testImage)

	assert.True(t, v.Available)
	assert.False(t, v.IsAppropriate)
	assert.Equal(t, 90, v.Confidence)
	client.AssertExpectations(t)
}

func TestVisionChecker_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		resp *providers.CompletionResponse
		err  error
	}{
		{name: "provider error", err: errors.New("503 from upstream")},
		{name: "empty answer", err: providers.ErrEmptyResponse},
		{name: "unparsable answer", resp: &providers.CompletionResponse{Response: "The image shows a dog."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.Client)
			client.On("Ask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			c := multimodal.NewVisionChecker("gemini", client, multimodal.Config{}, logrus.New())
			v := c.AnalyzeImage(context.Background(), moderation.TopicGeneric, "", "hello", testImage)

			assert.Equal(t, moderation.UnavailableImageVerdict(""), v)
			assert.False(t, v.Available)
			assert.True(t, v.IsAppropriate)
			assert.True(t, v.IsRelevant)
			assert.Equal(t, 40, v.Confidence)
		})
	}
}

func TestVisionChecker_Timeout(t *testing.T) {
	client := new(mocks.Client)
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context) //nolint:errcheck
			<-ctx.Done()
		}).
		Return(nil, context.DeadlineExceeded)

	c := multimodal.NewVisionChecker("anthropic", client, multimodal.Config{Timeout: 30 * time.Millisecond}, logrus.New())

	start := time.Now()
	v := c.AnalyzeImage(context.Background(), moderation.TopicEvent, "", "x", testImage)

	assert.False(t, v.Available)
	assert.Less(t, time.Since(start), time.Second)
}

func TestVisionChecker_NoImage(t *testing.T) {
	client := new(mocks.Client)
	c := multimodal.NewVisionChecker("openai", client, multimodal.Config{}, logrus.New())

	v := c.AnalyzeImage(context.Background(), moderation.TopicEvent, "", "x", nil)

	assert.False(t, v.Available)
	client.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNew(t *testing.T) {
	c, err := multimodal.New(multimodal.Config{}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, multimodal.Disabled{}, c)
	assert.False(t, c.AnalyzeImage(context.Background(), moderation.TopicEvent, "", "x", testImage).Available)

	locator := new(mocks.ProviderLocator)
	locator.On("Get", "anthropic").Return(new(mocks.Client), nil)
	c, err = multimodal.New(multimodal.Config{Provider: "Anthropic"}, locator, nil)
	require.NoError(t, err)
	assert.IsType(t, &multimodal.VisionChecker{}, c)

	locator.On("Get", "azure").Return(nil, errors.New("unsupported provider: azure"))
	_, err = multimodal.New(multimodal.Config{Provider: "azure"}, locator, nil)
	assert.Error(t, err)
}

func TestStub(t *testing.T) {
	s := &multimodal.Stub{Verdict: moderation.ImageVerdict{Available: true, IsAppropriate: false, Confidence: 90}}
	v := s.AnalyzeImage(context.Background(), moderation.TopicEvent, "", "x", testImage)
	assert.False(t, v.IsAppropriate)
}
