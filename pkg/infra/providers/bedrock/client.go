package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrockClient "github.com/campushub/modgate/pkg/infra/bedrock"
	"github.com/campushub/modgate/pkg/infra/providers"
)

const (
	ModelPrefixAnthropicClaude = "anthropic.claude"
	AnthropicVersion           = "bedrock-2023-05-31"
	DefaultModel               = "anthropic.claude-3-haiku-20240307-v1:0"
)

type Request struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Temperature      float64   `json:"temperature,omitempty"`
	Messages         []Message `json:"messages"`
}

type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type client struct {
	bedrockClient bedrockClient.Client
}

func NewBedrockClient(bc bedrockClient.Client) providers.Client {
	if bc == nil {
		bc = bedrockClient.NewClient()
	}
	return &client{
		bedrockClient: bc,
	}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
	image *providers.InlineImage,
) (*providers.CompletionResponse, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	if !isClaudeModel(model) {
		return nil, fmt.Errorf("bedrock model %q does not accept inline images", model)
	}

	runtime, err := c.bedrockClient.BuildClient(ctx, credentials(config.Credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	body, err := json.Marshal(prepareRequest(config, prompt, image))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Claude response: %w", err)
	}
	var responseText string
	for _, content := range parsed.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}
	if responseText == "" {
		return nil, providers.ErrEmptyResponse
	}

	id := parsed.ID
	if id == "" {
		id = fmt.Sprintf("bedrock-%d", time.Now().UnixNano())
	}
	return &providers.CompletionResponse{
		ID:       id,
		Model:    model,
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

func prepareRequest(config *providers.Config, prompt string, image *providers.InlineImage) *Request {
	var blocks []ContentBlock
	if image != nil {
		blocks = append(blocks, ContentBlock{
			Type: "image",
			Source: &ImageSource{
				Type:      "base64",
				MediaType: image.MIMEType,
				Data:      image.Base64(),
			},
		})
	}
	blocks = append(blocks, ContentBlock{Type: "text", Text: prompt})

	return &Request{
		AnthropicVersion: AnthropicVersion,
		MaxTokens:        providers.MaxTokens(config),
		System:           config.SystemPrompt,
		Temperature:      config.Temperature,
		Messages:         []Message{{Role: "user", Content: blocks}},
	}
}

func credentials(creds providers.Credentials) bedrockClient.Credentials {
	if creds.AwsBedrock == nil {
		return bedrockClient.Credentials{}
	}
	return bedrockClient.Credentials{
		AccessKey:    creds.AwsBedrock.AccessKey,
		SecretKey:    creds.AwsBedrock.SecretKey,
		SessionToken: creds.AwsBedrock.SessionToken,
		Region:       creds.AwsBedrock.Region,
		UseRole:      creds.AwsBedrock.UseRole,
		RoleARN:      creds.AwsBedrock.RoleARN,
	}
}

func isClaudeModel(model string) bool {
	return strings.Contains(model, ModelPrefixAnthropicClaude)
}
