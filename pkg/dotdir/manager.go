// Package dotdir resolves the .pilotlight/ application directory and the
// plugin directory that sits next to the running executable.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the application directory.
	DirName = ".pilotlight"

	// EnvHome names a directory to use instead of the local or home lookup.
	EnvHome = "PILOTLIGHT_HOME"

	pluginDirName = "plugins"
)

// Manager resolves directories. The zero value is not usable; call NewManager.
type Manager struct {
	executable func() (string, error)
	getenv     func(string) string
}

func NewManager() *Manager {
	return &Manager{
		executable: os.Executable,
		getenv:     os.Getenv,
	}
}

// Target returns the absolute .pilotlight/ directory, creating it if needed.
// Precedence:
//  1. overrideDir
//  2. $PILOTLIGHT_HOME
//  3. ./.pilotlight/ when it exists
//  4. ~/.pilotlight/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.lookup(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating pilotlight directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

func (m *Manager) lookup(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}
	if env := m.getenv(EnvHome); env != "" {
		return env, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if info, err := os.Stat(filepath.Join(cwd, DirName)); err == nil && info.IsDir() {
		return filepath.Join(cwd, DirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// PluginDir returns the plugins/ directory next to the running executable,
// following symlinks. It is not created; a missing directory holds no plugins.
func (m *Manager) PluginDir() (string, error) {
	exe, err := m.executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), pluginDirName), nil
}
