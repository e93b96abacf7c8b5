package assistant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
)

const okBody = `{
  "id": "resp_1",
  "object": "response",
  "output": [
    {"type": "message", "role": "assistant", "content": [
      {"type": "output_text", "text": "{\"step\": "},
      {"type": "output_text", "text": "\"Draft outline\"}"}
    ]}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOpenAI(Config{
		BaseURL:    srv.URL + "/v1/",
		APIKey:     "sk-test",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		HTTPClient: srv.Client(),
	})
	c.delay = time.Millisecond
	return c
}

func TestCompleteSendsRuleAndPayload(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, okBody)
	})

	got, err := c.Complete(context.Background(), AddStepRule, `{"step_to_add":"outline"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"step": "Draft outline"}`, got)

	assert.Equal(t, AddStepRule, gjson.GetBytes(body, "instructions").String())
	assert.Equal(t, `{"step_to_add":"outline"}`, gjson.GetBytes(body, "input").String())
	assert.Equal(t, DefaultModel, gjson.GetBytes(body, "model").String())
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"message":"busy"}}`)
			return
		}
		_, _ = io.WriteString(w, okBody)
	})

	got, err := c.Complete(context.Background(), AddStepRule, "x")
	require.NoError(t, err)
	assert.Contains(t, got, "Draft outline")
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down"}}`)
	})

	_, err := c.Complete(context.Background(), AddStepRule, "x")
	assert.True(t, clierr.Is(err, clierr.AssistantUnavailable))
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	})

	_, err := c.Complete(context.Background(), AddStepRule, "x")
	assert.True(t, clierr.Is(err, clierr.AssistantUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteWithoutKey(t *testing.T) {
	c := NewOpenAI(Config{})
	_, err := c.Complete(context.Background(), CreateRule, "x")
	assert.True(t, clierr.Is(err, clierr.AssistantUnavailable))
}

func TestOutputText(t *testing.T) {
	assert.Equal(t, `{"step": "Draft outline"}`, outputText([]byte(okBody)))
	assert.Empty(t, outputText([]byte(`{"output":[]}`)))
}
