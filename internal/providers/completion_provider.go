package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"onegoodthing/internal/structures"
	"strings"
	"time"
)

var (
	ErrAIDisabled      = errors.New("ai service is not configured")
	ErrRateLimited     = errors.New("rate limit exceeded, please try again later")
	ErrPaymentRequired = errors.New("ai credits exhausted")
	ErrEmptyCompletion = errors.New("empty completion")
)

const defaultCompletionBackoff = 500 * time.Millisecond

type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type CompletionProviderInterface interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Enabled() bool
}

// CompletionProvider talks to an OpenAI compatible chat completions endpoint.
type CompletionProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func NewCompletionProvider(conf *structures.Config, logger Logger) CompletionProviderInterface {
	if !conf.AI.Enabled || conf.AI.APIKey == "" {
		logger.Infof(TypeAI, "AI completions disabled")
		return &noopCompletion{}
	}

	limit := rate.Inf
	if conf.AI.RateLimit > 0 {
		limit = rate.Limit(conf.AI.RateLimit)
	}
	burst := conf.AI.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := conf.AI.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Infof(TypeAI, "AI completions enabled: model=%s", conf.AI.Model)
	return &CompletionProvider{
		baseURL:    strings.TrimRight(conf.AI.BaseURL, "/"),
		apiKey:     conf.AI.APIKey,
		model:      conf.AI.Model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: max(conf.AI.Retries, 0),
		backoff:    defaultCompletionBackoff,
		logger:     logger,
	}
}

func (c *CompletionProvider) Enabled() bool {
	return true
}

func (c *CompletionProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body := chatRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.doRequest(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return "", err
		}
		c.logger.Warnf(TypeAI, "completion attempt %d failed: %s", attempt+1, err)
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *CompletionProvider) doRequest(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &retryableError{err: fmt.Errorf("completion request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrPaymentRequired
	case resp.StatusCode >= 500:
		return "", &retryableError{err: fmt.Errorf("ai gateway error (%d): %s", resp.StatusCode, truncate(string(data), 200))}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("ai gateway error (%d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type noopCompletion struct{}

func (n *noopCompletion) Complete(_ context.Context, _ CompletionRequest) (string, error) {
	return "", ErrAIDisabled
}

func (n *noopCompletion) Enabled() bool { return false }
