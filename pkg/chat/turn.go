// Package chat holds the conversation model: turns, their attachments, and the
// ordered log that the engine appends to and persists.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role tags the provenance of a Turn.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
)

// String returns the wire form of the role ("system", "user", "assistant").
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleAssistant:
		return "assistant"
	default:
		return "user"
	}
}

// ParseRole maps a persisted role string back to a Role.
// Unrecognized values are treated as user turns.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return RoleSystem
	case "assistant":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// Turn is one message in a conversation. Turns are values: the log hands out
// copies, and the role never changes after construction.
type Turn struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewTurn builds a Turn with a fresh ID and timestamp. The attachments are
// copied so no two turns share descriptors.
func NewTurn(role Role, content string, attachments ...Attachment) Turn {
	return Turn{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		Attachments: cloneAttachments(attachments),
		CreatedAt:   time.Now().UTC(),
	}
}

func (t Turn) clone() Turn {
	t.Attachments = cloneAttachments(t.Attachments)
	return t
}

func cloneAttachments(in []Attachment) []Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attachment, len(in))
	copy(out, in)
	return out
}
