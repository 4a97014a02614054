package dotdir

import "path/filepath"

// Layout names the files kept inside a resolved .pilotlight/ directory.
type Layout string

func (l Layout) Config() string      { return filepath.Join(string(l), "config.toml") }
func (l Layout) Credentials() string { return filepath.Join(string(l), "credentials.toml") }

// History is the directory of per-conversation JSON files.
func (l Layout) History() string { return filepath.Join(string(l), "history") }

// HistoryDB is the SQLite history database.
func (l Layout) HistoryDB() string { return filepath.Join(string(l), "history.db") }
