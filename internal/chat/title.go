package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

const titlePrompt = `Summarize the conversation so far into a 4-word or less title. Do not use any quotation marks or punctuation. Respond with a json object in the format {"title": string}. Do not include any other commentary or description.`

// GenerateTitle asks the model for a short conversation title via a
// secondary non-streamed request. It never fails: any request or parse
// error falls back to the second-to-last message of the caller's input.
// The fallback is deliberately lossy.
func (c *Client) GenerateTitle(ctx context.Context, msgs []Message) string {
	prompt := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	for _, m := range msgs {
		prompt = append(prompt, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: titlePrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    prompt,
		Temperature: 1,
		MaxTokens:   64,
	})
	if err != nil || len(resp.Choices) == 0 {
		slog.Warn("title generation failed, using fallback", "error", err)
		return fallbackTitle(msgs)
	}

	var parsed struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil || parsed.Title == "" {
		slog.Warn("title response was not the expected JSON, using fallback", "error", err)
		return fallbackTitle(msgs)
	}
	return parsed.Title
}

func fallbackTitle(msgs []Message) string {
	switch n := len(msgs); {
	case n >= 2:
		return msgs[n-2].Content
	case n == 1:
		return msgs[0].Content
	default:
		return ""
	}
}
