// Package llm holds the provider-agnostic request and response types that the
// completion backend translates conversation turns into.
package llm

import "strings"

// Content block types.
const (
	BlockText  = "text"
	BlockImage = "image"
)

// Message is one conversation entry in a backend request or reply. Role is
// the wire form of chat.Role ("system", "user", "assistant").
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a piece of a message. Only text blocks are produced today;
// image blocks are decoded from backends that echo them.
type ContentBlock struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	ImageBase64 string `json:"image_base64,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
}

// NewTextMessage builds a single-block text message.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

// GetText joins the text blocks of the message.
func (m *Message) GetText() string {
	if len(m.Content) == 1 && m.Content[0].Type == BlockText {
		return m.Content[0].Text
	}

	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
