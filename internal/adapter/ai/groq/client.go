// Package groq implements domain.AIClient against the Groq OpenAI-compatible
// chat completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interviewer/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interviewer/internal/config"
	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

// Client calls the Groq chat completions endpoint with retry on transient
// failures. Construct with New; a missing API key is the caller's signal to
// use no client at all (nil selects the fallback path everywhere).
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a Groq client with the configured call timeout. Outbound
// calls are traced through the otelhttp transport.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Groq %s %s", r.Method, r.URL.Host)
		}),
	)
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.AICallTimeout,
			Transport: transport,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// errTransient wraps statuses worth retrying (429 and 5xx).
type errTransient struct{ error }

func (e errTransient) Unwrap() error { return e.error }

// ChatText sends the prompts and returns the completion text. Transient
// upstream failures are retried with exponential backoff; a context deadline
// maps to domain.ErrUpstreamTimeout.
func (c *Client) ChatText(ctx domain.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if c.cfg.GroqAPIKey == "" {
		return "", fmt.Errorf("%w: GROQ_API_KEY missing", domain.ErrInvalidArgument)
	}
	msgs := []chatMessage{{Role: "system", Content: systemPrompt}}
	if userPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "user", Content: userPrompt})
	}
	req := chatRequest{
		Model:       c.cfg.GroqModel,
		Messages:    msgs,
		MaxTokens:   c.cfg.GroqMaxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	var content string
	op := func() error {
		var err error
		content, err = c.doChat(ctx, req)
		if err != nil {
			var tr errTransient
			if errors.As(err, &tr) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	expo := c.backoffConfig()
	err := backoff.Retry(op, backoff.WithContext(expo, ctx))
	observability.AIRequestDuration.WithLabelValues("groq", "chat").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues("groq", "chat", "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("op=groq.chat: %w", domain.ErrUpstreamTimeout)
		}
		return "", fmt.Errorf("op=groq.chat: %w", err)
	}
	observability.AIRequestsTotal.WithLabelValues("groq", "chat", "ok").Inc()
	return content, nil
}

func (c *Client) doChat(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(c.cfg.GroqBaseURL, "/") + "/chat/completions"
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hr.Header.Set("Authorization", "Bearer "+c.cfg.GroqAPIKey)
	hr.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(hr)
	if err != nil {
		// network-level failures are worth one more attempt
		return "", errTransient{err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errTransient{err}
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		slog.Warn("groq transient error", slog.Int("status", resp.StatusCode))
		return "", errTransient{fmt.Errorf("groq status %d: %s", resp.StatusCode, snippet(raw))}
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("groq status %d: %s", resp.StatusCode, snippet(raw))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("groq decode: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("groq api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("groq: no choices returned")
	}
	return cr.Choices[0].Message.Content, nil
}

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

func snippet(b []byte) string {
	const n = 256
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
