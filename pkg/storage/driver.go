// Package storage defines the history archive drivers that persist
// conversations outside the process.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/pilotlight/pkg/chat"
)

// Driver defines the interface for persisting and retrieving conversations.
// A conversation is addressed by name and stored as its full ordered list of
// turns; Save replaces whatever was stored before.
type Driver interface {
	// Save replaces the stored turns of a conversation.
	Save(ctx context.Context, conversation string, turns []chat.Turn) error

	// Load returns the stored turns of a conversation in log order.
	// Returns ErrNotFound when nothing is stored under the name.
	Load(ctx context.Context, conversation string) ([]chat.Turn, error)

	// List returns the names of stored conversations, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes a conversation. Deleting a missing conversation is not an error.
	Delete(ctx context.Context, conversation string) error

	// Close closes the store and releases any resources.
	Close() error
}

// ValidateName rejects conversation names that cannot be used as a file name.
func ValidateName(conversation string) error {
	switch {
	case conversation == "":
		return errors.New("conversation name is empty")
	case conversation == "." || conversation == "..":
		return fmt.Errorf("invalid conversation name %q", conversation)
	case strings.ContainsAny(conversation, `/\`):
		return fmt.Errorf("conversation name %q must not contain path separators", conversation)
	}
	return nil
}
