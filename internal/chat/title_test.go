package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healio/chat-backend/test/testutil"
)

func newTestClient(t *testing.T, mock *testutil.MockOpenAI) *Client {
	t.Helper()
	cfg := testOpenAIConfig()
	cfg.Endpoint = mock.URL()
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestGenerateTitle_Success(t *testing.T) {
	mock := testutil.NewMockOpenAI("irrelevant")
	mock.TitleAnswer = `{"title":"Headache Duration Inquiry"}`
	defer mock.Close()

	client := newTestClient(t, mock)
	msgs := []Message{
		{Role: RoleUser, Content: "I have a headache"},
		{Role: RoleAssistant, Content: "How long?"},
	}

	title := client.GenerateTitle(context.Background(), msgs)
	assert.Equal(t, "Headache Duration Inquiry", title)
}

func TestGenerateTitle_FallbackOnRequestFailure(t *testing.T) {
	mock := testutil.NewMockOpenAI("irrelevant")
	mock.FailTitle = true
	defer mock.Close()

	client := newTestClient(t, mock)
	msgs := []Message{
		{Role: RoleUser, Content: "I have a headache"},
		{Role: RoleAssistant, Content: "How long?"},
	}

	title := client.GenerateTitle(context.Background(), msgs)
	assert.Equal(t, "I have a headache", title, "fallback is the second-to-last input message")
}

func TestGenerateTitle_FallbackOnBadJSON(t *testing.T) {
	mock := testutil.NewMockOpenAI("irrelevant")
	mock.TitleAnswer = "Sure! Here is a title: Headache Chat"
	defer mock.Close()

	client := newTestClient(t, mock)
	msgs := []Message{
		{Role: RoleUser, Content: "I have a headache"},
		{Role: RoleAssistant, Content: "How long?"},
	}

	title := client.GenerateTitle(context.Background(), msgs)
	assert.Equal(t, "I have a headache", title)
}

func TestGenerateTitle_SingleMessageFallback(t *testing.T) {
	mock := testutil.NewMockOpenAI("irrelevant")
	mock.FailTitle = true
	defer mock.Close()

	client := newTestClient(t, mock)
	title := client.GenerateTitle(context.Background(), []Message{{Role: RoleUser, Content: "only one"}})
	assert.Equal(t, "only one", title)
}
