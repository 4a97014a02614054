// Package jsonfile stores each conversation as <name>.json in a directory,
// in the same format as chat.Log.SaveToFile.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/storage"
)

const ext = ".json"

// Driver implements storage.Driver on top of JSON files.
type Driver struct {
	dir string
}

// NewDriver creates a driver rooted at dir, creating it if needed.
func NewDriver(dir string) (*Driver, error) {
	if dir == "" {
		return nil, errors.New("jsonfile driver requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	return &Driver{dir: dir}, nil
}

// Path returns the file that holds a conversation.
func (d *Driver) Path(conversation string) string {
	return filepath.Join(d.dir, conversation+ext)
}

func (d *Driver) Save(_ context.Context, conversation string, turns []chat.Turn) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}
	return chat.WriteTurns(d.Path(conversation), turns)
}

func (d *Driver) Load(_ context.Context, conversation string) ([]chat.Turn, error) {
	if err := storage.ValidateName(conversation); err != nil {
		return nil, err
	}

	turns, err := chat.ReadTurns(d.Path(conversation))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound{Conversation: conversation}
		}
		return nil, err
	}
	return turns, nil
}

func (d *Driver) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("listing history directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (d *Driver) Delete(_ context.Context, conversation string) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}
	if err := os.Remove(d.Path(conversation)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing history file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
