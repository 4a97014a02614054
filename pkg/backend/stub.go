package backend

import (
	"context"
	"strings"

	"github.com/papercomputeco/pilotlight/pkg/credentials"
	"github.com/papercomputeco/pilotlight/pkg/llm"
)

// Stub answers without contacting a backend. Replies depend only on the last
// message, so they are stable across runs.
type Stub struct {
	provider string
}

// NewStub creates a stub that names providerName in its replies.
func NewStub(providerName string) *Stub {
	return &Stub{provider: providerName}
}

func (s *Stub) Complete(_ context.Context, messages []llm.Message) string {
	var b strings.Builder
	b.WriteString("(Stub) Running in sample mode, so no ")
	b.WriteString(s.provider)
	b.WriteString(" request was issued. ")

	if len(messages) > 0 {
		b.WriteString("You asked: \"")
		b.WriteString(messages[len(messages)-1].GetText())
		b.WriteString("\". ")
	}

	if env := credentials.EnvVarForProvider(s.provider); env != "" {
		b.WriteString("Configure ")
		b.WriteString(env)
		b.WriteString(" or run `pilotlight auth` to talk to the API.\n")
	} else {
		b.WriteString("Disable stub mode to talk to the backend.\n")
	}
	b.WriteString("Stub responses are deterministic and fast for local testing.")
	return b.String()
}
