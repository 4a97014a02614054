package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/credentials"
	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider"
	"github.com/papercomputeco/pilotlight/pkg/utils"
)

// maxErrorBody caps how much of a failed response body ends up in the reply.
const maxErrorBody = 512

// HTTPCompleter sends the conversation to a provider's chat endpoint.
type HTTPCompleter struct {
	provider provider.Provider
	model    string
	baseURL  string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPCompleter binds cfg to the provider p.
func NewHTTPCompleter(p provider.Provider, cfg Config) *HTTPCompleter {
	model := cfg.Model
	if model == "" {
		model = p.DefaultModel()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = p.DefaultBaseURL()
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPCompleter{
		provider: p,
		model:    model,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		client:   client,
		logger:   logger,
	}
}

// Model returns the model requests are sent for.
func (c *HTTPCompleter) Model() string {
	return c.model
}

func (c *HTTPCompleter) Complete(ctx context.Context, messages []llm.Message) string {
	name := c.provider.Name()

	if c.provider.RequiresAPIKey() && c.apiKey == "" {
		return Errorf("%s environment variable not set. Run `pilotlight auth %s` or export it.",
			credentials.EnvVarForProvider(name), name)
	}

	body, err := c.provider.BuildRequest(&llm.ChatRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return Errorf("could not build %s request: %v", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.Endpoint(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return Errorf("invalid endpoint URL: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
	for k, v := range c.provider.Headers(c.apiKey) {
		req.Header.Set(k, v)
	}

	c.logger.Debug("sending completion request",
		zap.String("provider", name),
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Errorf("request to %s was cancelled or timed out.", name)
		}
		return Errorf("failed to send request or receive response: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("completion request failed",
			zap.String("provider", name),
			zap.Int("status", resp.StatusCode),
		)
		return Errorf("%s API error (status %d): %s", name, resp.StatusCode, utils.Truncate(string(payload), maxErrorBody))
	}

	parsed, err := c.provider.ParseResponse(payload)
	if err != nil {
		return Errorf("could not parse response: %v", err)
	}

	if parsed.Usage != nil {
		c.logger.Debug("completion received",
			zap.String("provider", name),
			zap.Int("prompt_tokens", parsed.Usage.PromptTokens),
			zap.Int("completion_tokens", parsed.Usage.CompletionTokens),
		)
	}

	return parsed.Message.GetText()
}
