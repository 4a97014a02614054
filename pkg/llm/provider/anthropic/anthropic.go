// Package anthropic speaks the Anthropic Messages format.
package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/pilotlight/pkg/llm"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

// provider implements the Provider interface for Anthropic's Messages API.
type provider struct{}

// New
func New() *provider { return &provider{} }

// Name
func (p *provider) Name() string {
	return "anthropic"
}

func (p *provider) DefaultBaseURL() string { return defaultBaseURL }

func (p *provider) DefaultModel() string { return defaultModel }

func (p *provider) RequiresAPIKey() bool { return true }

func (p *provider) Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/messages"
}

func (p *provider) Headers(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         apiKey,
		"anthropic-version": apiVersion,
	}
}

// BuildRequest lifts system messages into the top-level system field, since
// the Messages API only accepts user and assistant roles in the message list.
func (p *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.New("nil chat request")
	}

	system, rest := req.SplitSystem()
	messages := make([]anthropicMessage, 0, len(rest))
	for _, msg := range rest {
		messages = append(messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.GetText(),
		})
	}

	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return json.Marshal(anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
}

func (p *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}

	if len(resp.Content) == 0 {
		return nil, errors.New("anthropic returned no content")
	}

	content := make([]llm.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		content = append(content, llm.ContentBlock{Type: llm.BlockText, Text: block.Text})
	}

	var usage *llm.Usage
	if resp.Usage != nil {
		usage = &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return &llm.ChatResponse{
		Model: resp.Model,
		Message: llm.Message{
			Role:    resp.Role,
			Content: content,
		},
		StopReason:  resp.StopReason,
		Usage:       usage,
		CreatedAt:   time.Now(),
		RawResponse: payload,
	}, nil
}
