// Package backend is the completion backend adapter: it turns the
// conversation's messages into a single reply string.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/llm"
	"github.com/papercomputeco/pilotlight/pkg/llm/provider"
)

// ErrorPrefix marks a reply that reports a failure instead of model output.
const ErrorPrefix = "Error: "

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 2 * time.Minute

// Completer produces the assistant reply for a conversation.
// Failures are reported in-band as text starting with ErrorPrefix.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) string
}

// Config configures the completer returned by New.
type Config struct {
	// Provider is the backend wire format: openai, anthropic, or ollama.
	Provider string

	// Model overrides the provider's default model.
	Model string

	// BaseURL overrides the provider's default base URL.
	BaseURL string

	// APIKey is the resolved key; empty for providers that do not need one.
	APIKey string

	// StubMode returns canned replies without any network request.
	StubMode bool

	// Timeout bounds each request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is used instead of a client built from Timeout.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// New returns the stub when StubMode is set, otherwise an HTTP completer
// for the configured provider.
func New(cfg Config) (Completer, error) {
	if cfg.Provider == "" {
		cfg.Provider = provider.OpenAI
	}

	if cfg.StubMode {
		return NewStub(cfg.Provider), nil
	}

	p, err := provider.New(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return NewHTTPCompleter(p, cfg), nil
}

// Errorf formats an in-band error reply.
func Errorf(format string, args ...any) string {
	return ErrorPrefix + fmt.Sprintf(format, args...)
}

// IsError reports whether a reply carries an in-band error.
func IsError(reply string) bool {
	return strings.HasPrefix(reply, ErrorPrefix)
}
