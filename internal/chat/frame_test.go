package chat

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameFromChunk_EmptyChoices(t *testing.T) {
	chunk := openai.ChatCompletionStreamResponse{
		ID:      "chatcmpl-1",
		Object:  "chat.completion.chunk",
		Created: 1700000000,
		Model:   "gpt-4o",
	}
	meta := HistoryMetadata{ConversationID: "conv-1"}

	frame := FrameFromChunk(chunk, meta)

	require.Len(t, frame.Choices, 1)
	assert.Nil(t, frame.Choices[0].Delta)
	assert.Equal(t, FinishEndTurn, frame.Choices[0].FinishReason)

	raw, err := json.Marshal(frame)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\n")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "conv-1", parsed["history_metadata"].(map[string]any)["conversation_id"])
}

func TestFrameFromChunk_CopiesChoices(t *testing.T) {
	chunk := openai.ChatCompletionStreamResponse{
		ID:     "chatcmpl-2",
		Object: "chat.completion.chunk",
		Model:  "gpt-4o",
		Choices: []openai.ChatCompletionStreamChoice{
			{
				Index:        0,
				Delta:        openai.ChatCompletionStreamChoiceDelta{Role: RoleAssistant, Content: "Hello"},
				FinishReason: openai.FinishReasonNull,
			},
		},
	}
	meta := HistoryMetadata{ConversationID: "conv-2", Title: "Greeting"}

	frame := FrameFromChunk(chunk, meta)

	require.Len(t, frame.Choices, 1)
	require.NotNil(t, frame.Choices[0].Delta)
	assert.Equal(t, "Hello", frame.Choices[0].Delta.Content)
	assert.Equal(t, RoleAssistant, frame.Choices[0].Delta.Role)
	assert.Equal(t, meta, frame.HistoryMetadata)
}

func TestFrameFromResponse_FirstChoiceOnly(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		ID:     "chatcmpl-3",
		Object: "chat.completion",
		Model:  "gpt-4o",
		Choices: []openai.ChatCompletionChoice{
			{Index: 0, Message: openai.ChatCompletionMessage{Role: RoleAssistant, Content: "first"}, FinishReason: openai.FinishReasonStop},
			{Index: 1, Message: openai.ChatCompletionMessage{Role: RoleAssistant, Content: "second"}, FinishReason: openai.FinishReasonStop},
		},
	}

	frame := FrameFromResponse(resp, HistoryMetadata{})

	require.Len(t, frame.Choices, 1)
	require.NotNil(t, frame.Choices[0].Message)
	assert.Equal(t, "first", frame.Choices[0].Message.Content)
	assert.Equal(t, RoleAssistant, frame.Choices[0].Message.Role)
}

func TestFrameFromResponse_Deterministic(t *testing.T) {
	resp := openai.ChatCompletionResponse{
		ID:      "chatcmpl-4",
		Object:  "chat.completion",
		Created: 1700000000,
		Model:   "gpt-4o",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: RoleAssistant, Content: "stable"}, FinishReason: openai.FinishReasonStop},
		},
	}
	meta := HistoryMetadata{ConversationID: "conv-4"}

	first, err := json.Marshal(FrameFromResponse(resp, meta))
	require.NoError(t, err)
	second, err := json.Marshal(FrameFromResponse(resp, meta))
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second), "aggregation must be byte-identical for identical input")
}
