package chat

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"

	"github.com/healio/chat-backend/internal/apierror"
	"github.com/healio/chat-backend/internal/config"
)

// Client wraps the hosted completion API. Construct one per process and
// share it; concurrent requests may use it concurrently.
type Client struct {
	api *openai.Client
	cfg config.OpenAI
}

// NewClient validates the provider configuration and builds the client.
// Required settings and the API version floor are checked here, once, not
// per request.
func NewClient(cfg config.OpenAI) (*Client, error) {
	// Provider API versions are date-prefixed, so a plain string compare
	// orders them correctly.
	if cfg.APIVersion < config.MinimumAPIVersion {
		return nil, apierror.New(apierror.KindConfiguration,
			fmt.Sprintf("the minimum supported provider API version is %q", config.MinimumAPIVersion))
	}
	if cfg.Endpoint == "" {
		return nil, apierror.New(apierror.KindConfiguration, "AZURE_OPENAI_ENDPOINT is required")
	}
	if cfg.Model == "" {
		return nil, apierror.New(apierror.KindConfiguration, "AZURE_OPENAI_MODEL is required")
	}

	clientCfg := openai.DefaultAzureConfig(cfg.Key, cfg.Endpoint)
	clientCfg.APIVersion = cfg.APIVersion

	return &Client{api: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

// ShapeRequest builds the provider request from the caller's message list.
// Tool-role messages are dropped: the provider rejects them without the
// exact tool round-trip context, which this backend does not forward. The
// configured system message is prepended and only role/content survive the
// boundary.
func ShapeRequest(cfg config.OpenAI, msgs []Message, stream bool) openai.ChatCompletionRequest {
	shaped := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	shaped = append(shaped, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: cfg.SystemMessage,
	})
	for _, m := range msgs {
		if m.Role == RoleTool {
			continue
		}
		shaped = append(shaped, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	return openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    shaped,
		Temperature: explicitZero(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
		TopP:        explicitZero(cfg.TopP),
		Stream:      stream,
	}
}

// explicitZero substitutes the go-openai zero sentinel so that sampling
// parameters set to 0 survive the request serialization instead of being
// dropped by omitempty and replaced with the provider default.
func explicitZero(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

// Complete submits the shaped request with streaming disabled and returns
// the single complete response.
func (c *Client) Complete(ctx context.Context, msgs []Message) (openai.ChatCompletionResponse, error) {
	resp, err := c.api.CreateChatCompletion(ctx, ShapeRequest(c.cfg, msgs, false))
	if err != nil {
		return openai.ChatCompletionResponse{}, upstreamError(err)
	}
	return resp, nil
}

// Stream submits the shaped request with streaming enabled and returns the
// lazy chunk sequence. The caller owns the stream and must drain or close it.
func (c *Client) Stream(ctx context.Context, msgs []Message) (ChunkStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, ShapeRequest(c.cfg, msgs, true))
	if err != nil {
		return nil, upstreamError(err)
	}
	return stream, nil
}

// upstreamError converts a provider failure into the typed form, carrying
// the provider's HTTP status when it reported one. No retries here: retry
// policy, if any, belongs to the provider client.
func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierror.Wrap(apierror.KindUpstreamRequest, apiErr.Message, err).
			WithStatus(apiErr.HTTPStatusCode)
	}
	return apierror.Wrap(apierror.KindUpstreamRequest, "completion request failed", err)
}
