// Package ollama speaks the Ollama /api/chat format.
package ollama

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/pilotlight/pkg/llm"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
)

// provider implements the Provider interface for a local Ollama server.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "ollama"
}

func (o *provider) DefaultBaseURL() string { return defaultBaseURL }

func (o *provider) DefaultModel() string { return defaultModel }

// RequiresAPIKey is false: Ollama runs locally without authentication.
func (o *provider) RequiresAPIKey() bool { return false }

func (o *provider) Endpoint(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/api/chat"
}

func (o *provider) Headers(_ string) map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

func (o *provider) BuildRequest(req *llm.ChatRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.New("nil chat request")
	}

	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		om := ollamaMessage{Role: msg.Role}
		for _, block := range msg.Content {
			switch block.Type {
			case "text":
				om.Content += block.Text
			case "image":
				if block.ImageBase64 != "" {
					om.Images = append(om.Images, block.ImageBase64)
				}
			}
		}
		messages = append(messages, om)
	}

	out := ollamaRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   false,
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		out.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	return json.Marshal(out)
}

func (o *provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", resp.Error)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, resp.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	role := resp.Message.Role
	if role == "" {
		role = "assistant"
	}

	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  createdAt,
		Message:    llm.NewTextMessage(role, resp.Message.Content),
		StopReason: resp.DoneReason,
		Usage: &llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
		RawResponse: payload,
	}, nil
}
