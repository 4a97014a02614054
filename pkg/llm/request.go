package llm

// ChatRequest is the provider-agnostic completion request built from the
// conversation log. Providers translate it into their own wire format.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o-mini", "claude-haiku-4-5", "llama3.2")
	Model string `json:"model"`

	// Conversation messages, in log order
	Messages []Message `json:"messages"`

	// Generation parameters
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// SplitSystem separates system messages from the rest of the conversation.
// Backends with a dedicated system field (Anthropic) use the joined system
// text and send only the remaining messages.
func (r *ChatRequest) SplitSystem() (string, []Message) {
	var system string
	rest := make([]Message, 0, len(r.Messages))
	for _, msg := range r.Messages {
		if msg.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += msg.GetText()
			continue
		}
		rest = append(rest, msg)
	}
	return system, rest
}
