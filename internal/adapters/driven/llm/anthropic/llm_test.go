package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driven"
)

func messagesServer(t *testing.T, status int, content []map[string]any, capture *messagesRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": content, "stop_reason": "tool_use"})
	}))
}

func TestLLMService_GenerateJSON_ToolCall(t *testing.T) {
	var captured messagesRequest
	srv := messagesServer(t, http.StatusOK, []map[string]any{
		{"type": "tool_use", "name": "record_answer", "input": map[string]any{"answer": "a", "citations": []any{}}},
	}, &captured)
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := svc.GenerateJSON(context.Background(), driven.StructuredRequest{
		System:     "sys",
		User:       "usr",
		SchemaName: "answer",
		Schema:     &driven.Schema{Type: driven.SchemaObject},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"a","citations":[]}`, out)
	assert.Equal(t, "sys", captured.System)
	assert.Equal(t, DefaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "record_answer", captured.Tools[0].Name)
	require.NotNil(t, captured.ToolChoice)
	assert.Equal(t, "tool", captured.ToolChoice.Type)
	assert.Equal(t, "record_answer", captured.ToolChoice.Name)
}

func TestLLMService_GenerateJSON_ArrayUnwrapped(t *testing.T) {
	srv := messagesServer(t, http.StatusOK, []map[string]any{
		{"type": "text", "text": "Here you go"},
		{"type": "tool_use", "name": "record_quiz", "input": map[string]any{"items": []any{map[string]any{"id": "1"}}}},
	}, nil)
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := svc.GenerateJSON(context.Background(), driven.StructuredRequest{
		SchemaName: "quiz",
		Schema:     &driven.Schema{Type: driven.SchemaArray, Items: &driven.Schema{Type: driven.SchemaObject}},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, out)
}

func TestLLMService_GenerateJSON_NoToolCall(t *testing.T) {
	srv := messagesServer(t, http.StatusOK, []map[string]any{{"type": "text", "text": "I refuse"}}, nil)
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.GenerateJSON(context.Background(), driven.StructuredRequest{Schema: &driven.Schema{Type: driven.SchemaObject}})
	assert.Error(t, err)

	text, err := svc.GenerateJSON(context.Background(), driven.StructuredRequest{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "I refuse", text)
}

func TestLLMService_GenerateJSON_RateLimited(t *testing.T) {
	srv := messagesServer(t, http.StatusTooManyRequests, nil, nil)
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.GenerateJSON(context.Background(), driven.StructuredRequest{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}
