package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
)

type mockAnalyzer struct {
	result      api.ChatResult
	err         error
	lastContext map[string]any
	lastMessage string
	calls       int
}

func (m *mockAnalyzer) ChatbotAnalyze(_ context.Context, chatContext map[string]any, message string) (api.ChatResult, error) {
	m.calls++
	m.lastContext = chatContext
	m.lastMessage = message
	return m.result, m.err
}

func TestSendAppendsUserAndAssistantMessages(t *testing.T) {
	analyzer := &mockAnalyzer{
		result: api.ChatResult{Kind: api.ChatAnswer, Text: "3 providers look suspicious."},
	}
	session := NewSession(analyzer, nil)

	result, err := session.Send(context.Background(), "Which providers are risky?")
	require.NoError(t, err)
	assert.Equal(t, api.ChatAnswer, result.Kind)

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "Which providers are risky?", messages[0].Text)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Equal(t, "3 providers look suspicious.", messages[1].Text)
}

func TestSendErrorKeepsUserMessageAndRecordsError(t *testing.T) {
	analyzer := &mockAnalyzer{err: fmt.Errorf("chatbot-analyze: HTTP error! status: 503")}
	session := NewSession(analyzer, nil)

	_, err := session.Send(context.Background(), "hello")
	require.Error(t, err)

	messages := session.Messages()
	require.Len(t, messages, 2, "failed send still produces exactly one assistant entry")
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	assert.Contains(t, messages[1].Text, "status: 503")
}

func TestHistoryWindowLimitedToLastNine(t *testing.T) {
	analyzer := &mockAnalyzer{result: api.ChatResult{Kind: api.ChatAnswer, Text: "ok"}}
	session := NewSession(analyzer, nil)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := session.Send(ctx, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}
	// 14 messages in the transcript now; the next send must replay only 9.
	require.Len(t, session.Messages(), 14)

	_, err := session.Send(ctx, "final question")
	require.NoError(t, err)

	history, ok := analyzer.lastContext["chat_history"].([]map[string]string)
	require.True(t, ok)
	assert.Len(t, history, 9)
	assert.Equal(t, "assistant", history[0]["role"], "window starts mid-exchange after the dropped prefix")
	assert.Equal(t, "question 3", history[1]["text"])
	assert.Equal(t, "ok", history[8]["text"])
	assert.Equal(t, "final question", analyzer.lastMessage)

	// Transcript itself is never truncated.
	assert.Len(t, session.Messages(), 16)
}

func TestContextFuncMergedIntoRequest(t *testing.T) {
	analyzer := &mockAnalyzer{result: api.ChatResult{Kind: api.ChatAnswer, Text: "ok"}}
	session := NewSession(analyzer, func() map[string]any {
		return map[string]any{"total_providers": 42, "fraud_count": 7}
	})

	_, err := session.Send(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, 42, analyzer.lastContext["total_providers"])
	assert.Equal(t, 7, analyzer.lastContext["fraud_count"])
	assert.Contains(t, analyzer.lastContext, "chat_history")
}

func TestFallbackAndRateLimitTracking(t *testing.T) {
	analyzer := &mockAnalyzer{
		result: api.ChatResult{
			Kind:      api.ChatFallback,
			Text:      "The assistant is temporarily unavailable.",
			RateLimit: &api.RateLimitInfo{Remaining: 0, ResetAfter: "60s"},
		},
	}
	session := NewSession(analyzer, nil)

	_, err := session.Send(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 1, session.FallbackCount())
	require.NotNil(t, session.RateLimit())
	assert.Equal(t, "60s", session.RateLimit().ResetAfter)
}

func TestReset(t *testing.T) {
	analyzer := &mockAnalyzer{result: api.ChatResult{Kind: api.ChatAnswer, Text: "ok"}}
	session := NewSession(analyzer, nil)

	_, err := session.Send(context.Background(), "hi")
	require.NoError(t, err)
	session.Reset()

	assert.Empty(t, session.Messages())
	assert.Nil(t, session.RateLimit())
	assert.Zero(t, session.FallbackCount())
}
