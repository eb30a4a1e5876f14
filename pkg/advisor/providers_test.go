package advisor_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aretw0/campusmate/pkg/advisor"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropic_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "你好呀"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	a, err := advisor.NewAnthropic(advisor.AnthropicConfig{APIKey: "test-key", Model: "claude-test", BaseURL: srv.URL + "/"}, anthropicopt.WithMaxRetries(0))
	require.NoError(t, err)

	text, err := a.Complete(context.Background(), advisor.Prompt{System: "persona", User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "你好呀", text)
	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, advisor.DefaultMaxTokens, body["max_tokens"])
	assert.NotEmpty(t, body["system"])
}

func TestAnthropic_Errors(t *testing.T) {
	_, err := advisor.NewAnthropic(advisor.AnthropicConfig{})
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	a, err := advisor.NewAnthropic(advisor.AnthropicConfig{APIKey: "k", BaseURL: srv.URL + "/"}, anthropicopt.WithMaxRetries(0))
	require.NoError(t, err)
	_, err = a.Complete(context.Background(), advisor.Prompt{User: "hi"})
	assert.Error(t, err)
}

func TestOpenAI_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1", "object": "response", "status": "completed", "model": "gpt-test",
			"output": [{
				"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
				"content": [{"type": "output_text", "text": "{\"is_inappropriate\": false}", "annotations": []}]
			}]
		}`)
	}))
	defer srv.Close()

	o, err := advisor.NewOpenAI(advisor.OpenAIConfig{APIKey: "test-key", Model: "gpt-test", BaseURL: srv.URL + "/"}, openaiopt.WithMaxRetries(0))
	require.NoError(t, err)

	m, err := advisor.NewLLM(o).Moderate(context.Background(), "你好")
	require.NoError(t, err)
	assert.False(t, m.Inappropriate)
	assert.Equal(t, "gpt-test", body["model"])
	input, ok := body["input"].([]any)
	require.True(t, ok)
	assert.Len(t, input, 2, "system and user messages")
}

func TestOpenAI_Errors(t *testing.T) {
	_, err := advisor.NewOpenAI(advisor.OpenAIConfig{})
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	o, err := advisor.NewOpenAI(advisor.OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/"}, openaiopt.WithMaxRetries(0))
	require.NoError(t, err)
	_, err = o.Complete(context.Background(), advisor.Prompt{User: "hi"})
	assert.Error(t, err)
}
