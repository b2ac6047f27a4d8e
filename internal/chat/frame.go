package chat

import (
	"github.com/sashabaranov/go-openai"
)

// FinishEndTurn marks the synthesized terminal frame for provider chunks
// that carry no choices (some providers emit a final usage-only chunk).
const FinishEndTurn = "end_turn"

// Frame is the unit written to the client: one completion chunk (or one
// complete response) normalized and merged with the history metadata. In
// streaming mode each frame is a standalone line of newline-delimited JSON.
type Frame struct {
	ID              string          `json:"id"`
	Model           string          `json:"model"`
	Created         int64           `json:"created"`
	Object          string          `json:"object"`
	Choices         []FrameChoice   `json:"choices"`
	HistoryMetadata HistoryMetadata `json:"history_metadata"`
}

// FrameChoice carries either an incremental delta (streaming) or a complete
// message (non-streaming), never both.
type FrameChoice struct {
	Index        int      `json:"index"`
	Delta        *Delta   `json:"delta,omitempty"`
	Message      *Message `json:"message,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Delta is the incremental content of one streamed choice.
type Delta struct {
	Role      string            `json:"role,omitempty"`
	Content   string            `json:"content,omitempty"`
	ToolCalls []openai.ToolCall `json:"tool_calls,omitempty"`
}

// FrameFromChunk normalizes one provider chunk into a frame. This is the
// single point where the two chunk shapes are told apart: a chunk with no
// choices becomes a content-free frame carrying only the end_turn marker,
// so clients see a clean terminus instead of a stall; a chunk with choices
// has them copied through unchanged.
func FrameFromChunk(chunk openai.ChatCompletionStreamResponse, meta HistoryMetadata) Frame {
	frame := Frame{
		ID:              chunk.ID,
		Model:           chunk.Model,
		Created:         chunk.Created,
		Object:          chunk.Object,
		HistoryMetadata: meta,
	}

	if len(chunk.Choices) == 0 {
		frame.Choices = []FrameChoice{{FinishReason: FinishEndTurn}}
		return frame
	}

	frame.Choices = make([]FrameChoice, 0, len(chunk.Choices))
	for _, c := range chunk.Choices {
		frame.Choices = append(frame.Choices, FrameChoice{
			Index: c.Index,
			Delta: &Delta{
				Role:      c.Delta.Role,
				Content:   c.Delta.Content,
				ToolCalls: c.Delta.ToolCalls,
			},
			FinishReason: string(c.FinishReason),
		})
	}
	return frame
}

// FrameFromResponse shapes a complete (non-streamed) response into the same
// frame form, keeping only the first choice's message.
func FrameFromResponse(resp openai.ChatCompletionResponse, meta HistoryMetadata) Frame {
	frame := Frame{
		ID:              resp.ID,
		Model:           resp.Model,
		Created:         resp.Created,
		Object:          resp.Object,
		Choices:         []FrameChoice{},
		HistoryMetadata: meta,
	}
	if len(resp.Choices) > 0 {
		c := resp.Choices[0]
		frame.Choices = []FrameChoice{{
			Index: c.Index,
			Message: &Message{
				Role:    RoleAssistant,
				Content: c.Message.Content,
			},
			FinishReason: string(c.FinishReason),
		}}
	}
	return frame
}
