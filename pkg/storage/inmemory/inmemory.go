// Package inmemory provides a process-local history driver, used when
// history should not outlive the session and in tests.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of conversations
	mu sync.RWMutex

	// conversations maps a conversation name to its turns
	conversations map[string][]chat.Turn
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		conversations: make(map[string][]chat.Turn),
	}
}

// Save replaces the stored turns of a conversation.
func (s *Driver) Save(_ context.Context, conversation string, turns []chat.Turn) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}

	stored := chat.NewLog(turns...).Turns()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversation] = stored
	return nil
}

// Load returns a copy of the stored turns.
func (s *Driver) Load(_ context.Context, conversation string) ([]chat.Turn, error) {
	if err := storage.ValidateName(conversation); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.conversations[conversation]
	if !ok {
		return nil, storage.ErrNotFound{Conversation: conversation}
	}
	return chat.NewLog(turns...).Turns(), nil
}

// List returns the stored conversation names, sorted.
func (s *Driver) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.conversations))
	for name := range s.conversations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a conversation.
func (s *Driver) Delete(_ context.Context, conversation string) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversation)
	return nil
}

// Close is a no-op.
func (s *Driver) Close() error {
	return nil
}
