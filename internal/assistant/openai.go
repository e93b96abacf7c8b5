package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/tidwall/gjson"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
)

// Client defaults.
const (
	DefaultModel      = "gpt-4o-mini-2024-07-18"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2

	initialDelay = 1 * time.Second
)

// Config configures the OpenAI completer.
type Config struct {
	Model      string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// OpenAI completes requests through the OpenAI Responses API.
type OpenAI struct {
	cfg     Config
	service responses.ResponseService
	delay   time.Duration
}

// NewOpenAI creates a completer. Retries are driven here rather than by
// the SDK so that every attempt gets its own timeout.
func NewOpenAI(cfg Config) *OpenAI {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	return &OpenAI{
		cfg:     cfg,
		service: responses.NewResponseService(opts...),
		delay:   initialDelay,
	}
}

// Complete sends rule as instructions and payload as input. Transport
// errors, 429 and 5xx replies are retried with exponential backoff; when
// attempts run out the error carries ASSISTANT_UNAVAILABLE.
func (c *OpenAI) Complete(ctx context.Context, rule, payload string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", clierr.New(clierr.AssistantUnavailable, "assistant API key not configured")
	}

	params := responses.ResponseNewParams{
		Model:        c.cfg.Model,
		Instructions: param.NewOpt(rule),
		Input:        responses.ResponseNewParamsInputUnion{OfString: param.NewOpt(payload)},
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// 1s, 2s, 4s, ...
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.delay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", clierr.Wrap(clierr.AssistantUnavailable, ctx.Err(), "assistant request cancelled")
			}
		}

		text, retry, err := c.attempt(ctx, params)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.cfg.Logger.Warn("assistant request failed",
			"attempt", attempt+1, "of", attempts, "retry", retry, "error", err)
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return "", clierr.Wrap(clierr.AssistantUnavailable, lastErr, "assistant unavailable").
		WithDetails(map[string]any{"model": c.cfg.Model, "attempts": attempts})
}

func (c *OpenAI) attempt(ctx context.Context, params responses.ResponseNewParams) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var rawBody []byte
	_, err := c.service.New(ctx, params, option.WithResponseBodyInto(&rawBody))
	if err != nil {
		var apiErr *responses.Error
		if errors.As(err, &apiErr) {
			retry := apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
			return "", retry, fmt.Errorf("responses api status %d: %s", apiErr.StatusCode, strings.TrimSpace(apiErr.RawJSON()))
		}
		return "", true, fmt.Errorf("responses request failed: %w", err)
	}
	if len(rawBody) == 0 {
		return "", true, errors.New("responses api returned empty response")
	}
	return outputText(rawBody), false, nil
}

// outputText concatenates the output_text parts of a Responses API body.
func outputText(raw []byte) string {
	var b strings.Builder
	gjson.GetBytes(raw, "output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "output_text" {
				b.WriteString(part.Get("text").String())
			}
			return true
		})
		return true
	})
	return b.String()
}
