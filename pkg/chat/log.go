package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is an ordered, append-only sequence of turns. The zero value is an
// empty log ready for use.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewLog creates a log holding the given turns in order.
func NewLog(turns ...Turn) *Log {
	l := &Log{}
	for _, t := range turns {
		l.turns = append(l.turns, t.clone())
	}
	return l
}

// Append adds a turn to the end of the log.
func (l *Log) Append(t Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, t.clone())
}

// Turns returns a copy of every turn in log order.
func (l *Log) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Turn, len(l.turns))
	for i, t := range l.turns {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// Last returns the most recent turn, or false when the log is empty.
func (l *Log) Last() (Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1].clone(), true
}

// Clear removes every turn.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}

// Replace swaps the log contents for the given turns.
func (l *Log) Replace(turns []Turn) {
	next := make([]Turn, len(turns))
	for i, t := range turns {
		next[i] = t.clone()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = next
}

// SaveToFile writes the log as an indented JSON array. The file is written to
// a temporary sibling and renamed into place.
func (l *Log) SaveToFile(path string) error {
	return WriteTurns(path, l.Turns())
}

// LoadFromFile replaces the log contents with the turns stored at path.
// On any error the log is left unchanged.
func (l *Log) LoadFromFile(path string) error {
	turns, err := ReadTurns(path)
	if err != nil {
		return err
	}
	l.Replace(turns)
	return nil
}

// WriteTurns persists turns to path in the history file format.
func WriteTurns(path string, turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing history: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// ReadTurns decodes the history file at path. Missing IDs are filled in and
// zero timestamps are set to the load time.
func ReadTurns(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}

	now := time.Now().UTC()
	for i := range turns {
		if turns[i].ID == "" {
			turns[i].ID = uuid.NewString()
		}
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = now
		}
	}
	return turns, nil
}
