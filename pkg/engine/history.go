package engine

import (
	"context"

	"github.com/papercomputeco/pilotlight/pkg/storage"
)

// SaveHistory writes the log to a JSON file.
func (e *Engine) SaveHistory(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.log.SaveToFile(path)
}

// LoadHistory replaces the log with the contents of a JSON file. On error the
// log is left unchanged. An empty file leaves only the system turn.
func (e *Engine) LoadHistory(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.log.LoadFromFile(path); err != nil {
		return err
	}
	if e.log.Len() == 0 {
		e.seed()
	}
	return nil
}

// Save stores the log in d under the engine's conversation name.
func (e *Engine) Save(ctx context.Context, d storage.Driver) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return d.Save(ctx, e.conversation, e.log.Turns())
}

// Load restores the engine's conversation from d. A missing conversation is
// reported as storage.ErrNotFound and leaves the log unchanged.
func (e *Engine) Load(ctx context.Context, d storage.Driver) error {
	turns, err := d.Load(ctx, e.conversation)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.restore(turns)
	return nil
}
