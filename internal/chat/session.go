// Package chat keeps the conversation state for the analysis assistant.
package chat

import (
	"context"
	"log/slog"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
)

// historyWindow bounds how much of the transcript is sent with each request.
// Older messages stay in the local transcript but are not replayed upstream.
const historyWindow = 9

// Analyzer is the chatbot slice of the API client.
type Analyzer interface {
	ChatbotAnalyze(ctx context.Context, chatContext map[string]any, message string) (api.ChatResult, error)
}

// ContextFunc supplies the analysis context (dashboard aggregates, current
// predictions) attached to every request. Called per send so the assistant
// always sees the latest session state.
type ContextFunc func() map[string]any

// Session is an append-only conversation. The transcript survives failed
// sends: errors are recorded as assistant messages rather than dropped.
type Session struct {
	analyzer    Analyzer
	contextFn   ContextFunc
	messages    []model.ChatMessage
	lastRate    *api.RateLimitInfo
	fallbackCnt int
}

// NewSession creates an empty session. contextFn may be nil when no analysis
// context is available yet.
func NewSession(analyzer Analyzer, contextFn ContextFunc) *Session {
	return &Session{analyzer: analyzer, contextFn: contextFn}
}

// Messages returns the full transcript in order.
func (s *Session) Messages() []model.ChatMessage {
	return s.messages
}

// RateLimit returns the most recent upstream quota info, nil if the backend
// never reported one.
func (s *Session) RateLimit() *api.RateLimitInfo {
	return s.lastRate
}

// FallbackCount reports how many replies were served from the canned
// fallback path rather than the live model.
func (s *Session) FallbackCount() int {
	return s.fallbackCnt
}

// Send posts a user message and returns the assistant's reply. The user
// message is appended to the transcript before the network call, so it is
// visible even when the request fails. Exactly one assistant message is
// appended per send; on error its text is the error itself.
func (s *Session) Send(ctx context.Context, message string) (api.ChatResult, error) {
	history := s.historyPayload()
	s.messages = append(s.messages, model.ChatMessage{Role: model.RoleUser, Text: message})

	chatContext := map[string]any{"chat_history": history}
	if s.contextFn != nil {
		for k, v := range s.contextFn() {
			chatContext[k] = v
		}
	}

	result, err := s.analyzer.ChatbotAnalyze(ctx, chatContext, message)
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		s.messages = append(s.messages, model.ChatMessage{
			Role: model.RoleAssistant,
			Text: "Error: " + err.Error(),
		})
		return api.ChatResult{}, err
	}

	if result.RateLimit != nil {
		s.lastRate = result.RateLimit
	}
	if result.Kind == api.ChatFallback {
		s.fallbackCnt++
	}

	s.messages = append(s.messages, model.ChatMessage{Role: model.RoleAssistant, Text: result.Text})
	return result, nil
}

// Reset clears the transcript and counters.
func (s *Session) Reset() {
	s.messages = nil
	s.lastRate = nil
	s.fallbackCnt = 0
}

// historyPayload renders the trailing window of the transcript in the wire
// shape the backend expects.
func (s *Session) historyPayload() []map[string]string {
	start := 0
	if len(s.messages) > historyWindow {
		start = len(s.messages) - historyWindow
	}
	window := s.messages[start:]
	payload := make([]map[string]string, 0, len(window))
	for _, m := range window {
		payload = append(payload, map[string]string{
			"role": string(m.Role),
			"text": m.Text,
		})
	}
	return payload
}
