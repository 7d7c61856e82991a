package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
)

const sampleReport = "# Pre-Calculated Metrics for ACME\nCompany: Acme Corp\n"

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 1,
		TransientBackoff:  time.Millisecond,
	}
}

func TestBuildMessages(t *testing.T) {
	messages, err := BuildMessages("Buffett", sampleReport)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "You are Warren Buffett")
	assert.Contains(t, messages[0].Content, "Do not recompute them")
	assert.Equal(t, Message{Role: "user", Content: sampleReport}, messages[1])

	_, err = BuildMessages("graham", "  \n")
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestPersona(t *testing.T) {
	assert.Contains(t, Persona("credit_analyst"), "credit analyst")
	assert.Equal(t, defaultPersona, Persona("keynes"))
	assert.Equal(t, defaultPersona, Persona(""))
}

func TestSplitSystem(t *testing.T) {
	turns, system, err := splitSystem([]Message{
		{Role: "system", Content: "first"},
		{Role: "system", Content: "second"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", system)
	assert.Len(t, turns, 2)

	_, _, err = splitSystem(nil)
	assert.Error(t, err)

	_, _, err = splitSystem([]Message{{Role: "system", Content: "only"}, {Role: "assistant", Content: "x"}})
	assert.Error(t, err)
}

func TestConvertMessages(t *testing.T) {
	messages, err := BuildMessages("lynch", sampleReport)
	require.NoError(t, err)

	claude, system, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Len(t, claude, 1)
	assert.Contains(t, system, "Peter Lynch")

	gemini, system, err := convertMessagesToGemini(append(messages, Message{Role: "assistant", Content: "ok"}))
	require.NoError(t, err)
	require.Len(t, gemini, 2)
	assert.Equal(t, "user", gemini[0].Role)
	assert.Equal(t, "model", gemini[1].Role)
	assert.Contains(t, system, "Peter Lynch")
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.True(t, IsRateLimitError(errors.New("POST /v1/messages: 429 Too Many Requests")))
	assert.True(t, IsRateLimitError(errors.New("Error 429, Status: RESOURCE_EXHAUSTED")))
	assert.False(t, IsRateLimitError(errors.New("500 Internal Server Error")))
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: quota exceeded. Please retry in 45.5s., Status: RESOURCE_EXHAUSTED")
	assert.Equal(t, 45500*time.Millisecond, ExtractRetryDelay(err))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("429")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoff(t *testing.T) {
	c := NewDefaultRetryConfig()

	assert.Equal(t, 45*time.Second, c.CalculateBackoff(0, 0))
	assert.Equal(t, time.Duration(67.5*float64(time.Second)), c.CalculateBackoff(1, 0))
	assert.Equal(t, 90*time.Second, c.CalculateBackoff(3, 0), "capped")
	assert.Equal(t, 15*time.Second, c.CalculateBackoff(0, 10*time.Second))
}

func TestRetryDo(t *testing.T) {
	logger := arbor.NewLogger()

	calls := 0
	err := fastRetry().do(context.Background(), logger, "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("429 Too Many Requests")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = fastRetry().do(context.Background(), logger, "test", func() error {
		calls++
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 3, calls, "initial call plus two retries")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = fastRetry().do(ctx, logger, "test", func() error { return errors.New("boom") })
	assert.ErrorIs(t, err, context.Canceled)
}

func newClaudeServer(t *testing.T, failFirst int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]interface{}
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "claude-sonnet-4-5", req["model"])
		assert.NotEmpty(t, req["system"])

		w.Header().Set("Content-Type", "application/json")
		if n <= failFirst {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "A durable franchise at a fair price."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 120, "output_tokens": 12}
		}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClaudeNarrate(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server, calls := newClaudeServer(t, 0)

	n, err := NewClaudeNarrator(&common.ClaudeConfig{}, arbor.NewLogger(), option.WithBaseURL(server.URL))
	require.NoError(t, err)
	n.retry = fastRetry()

	text, err := n.Narrate(context.Background(), "buffett", sampleReport)
	require.NoError(t, err)
	assert.Equal(t, "A durable franchise at a fair price.", text)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "claude", n.Provider())
}

func TestClaudeNarrateRetriesRateLimit(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	server, calls := newClaudeServer(t, 1)

	n, err := NewClaudeNarrator(&common.ClaudeConfig{Model: "claude-sonnet-4-5"}, arbor.NewLogger(), option.WithBaseURL(server.URL))
	require.NoError(t, err)
	n.retry = fastRetry()

	text, err := n.Narrate(context.Background(), "burry", sampleReport)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiNarrate(t *testing.T) {
	t.Setenv("FINSIGHT_GEMINI_API_KEY", "gemini-key")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Leverage is the story here."}]}}]}`))
	}))
	defer server.Close()

	n, err := NewGeminiNarrator(context.Background(), &common.GeminiConfig{Temperature: 0.4}, arbor.NewLogger(), server.URL)
	require.NoError(t, err)
	n.retry = fastRetry()

	text, err := n.Narrate(context.Background(), "dalio", sampleReport)
	require.NoError(t, err)
	assert.Equal(t, "Leverage is the story here.", text)
	assert.Equal(t, "gemini", n.Provider())
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, env := range []string{"ANTHROPIC_API_KEY", "FINSIGHT_CLAUDE_API_KEY", "FINSIGHT_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(env, "")
	}
	logger := arbor.NewLogger()

	config := common.NewDefaultConfig()
	_, err := New(context.Background(), config, logger)
	assert.Error(t, err)

	config.LLM.DefaultProvider = common.LLMProviderGemini
	_, err = New(context.Background(), config, logger)
	assert.Error(t, err)

	config.LLM.DefaultProvider = "openai"
	_, err = New(context.Background(), config, logger)
	assert.Error(t, err)
}
