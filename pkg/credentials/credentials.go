// Package credentials stores backend API keys in credentials.toml and resolves
// the key a backend should use.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/pilotlight/pkg/dotdir"
)

const currentVersion = 0

// providerEnvVars lists the variables checked for each provider's key, in order.
var providerEnvVars = map[string][]string{
	"openai":    {"PILOTLIGHT_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"anthropic": {"PILOTLIGHT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
}

// Manager reads and writes credentials.toml inside the .pilotlight/ directory.
type Manager struct {
	path string
	now  func() time.Time
}

// NewManager resolves the .pilotlight/ directory (override first, then the
// usual dotdir lookup) and returns a manager for its credentials file.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path: dotdir.Layout(target).Credentials(),
		now:  time.Now,
	}, nil
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{Version: currentVersion}

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading credentials: %w", err)
	default:
		if err := toml.Unmarshal(data, creds); err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
	}

	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}
	return creds, nil
}

// Save replaces credentials.toml with creds. The file is written next to the
// target and renamed into place, owner-readable only.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// update loads the file, applies fn and saves the result.
func (m *Manager) update(fn func(*Credentials)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}
	fn(creds)
	return m.Save(creds)
}

// SetKey stores key for provider.
func (m *Manager) SetKey(provider, key string) error {
	return m.update(func(c *Credentials) {
		c.Providers[provider] = ProviderCredential{
			APIKey:    key,
			UpdatedAt: m.now().UTC().Truncate(time.Second),
		}
	})
}

// GetKey returns the stored key for provider, or "" when none is stored.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}
	return creds.Providers[provider].APIKey, nil
}

// RemoveKey deletes the stored key for provider.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(c *Credentials) {
		delete(c.Providers, provider)
	})
}

// ListProviders returns the providers with a stored key, sorted.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	providers := make([]string, 0, len(creds.Providers))
	for name := range creds.Providers {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers, nil
}

// GetTarget returns the credentials file path.
func (m *Manager) GetTarget() string {
	return m.path
}

// EnvVarForProvider returns the primary environment variable for provider, or
// "" for providers that take no key.
func EnvVarForProvider(provider string) string {
	if vars := providerEnvVars[provider]; len(vars) > 0 {
		return vars[0]
	}
	return ""
}

// Resolve finds the API key for provider. An explicit key (from config or a
// flag) wins, then the stored key, then the provider's environment variables.
// A nil manager skips the stored key.
func Resolve(m *Manager, provider, explicit string) Resolution {
	res := Resolution{Provider: provider}

	if explicit != "" {
		res.Key, res.Source = explicit, SourceExplicit
		return res
	}

	if m != nil {
		if key, err := m.GetKey(provider); err == nil && key != "" {
			res.Key, res.Source = key, SourceStored
			return res
		}
	}

	for _, name := range providerEnvVars[provider] {
		if key := os.Getenv(name); key != "" {
			res.Key, res.Source, res.EnvVar = key, SourceEnv, name
			return res
		}
	}

	return res
}

// ResolveKey is Resolve without the provenance.
func ResolveKey(m *Manager, provider, explicit string) string {
	return Resolve(m, provider, explicit).Key
}

// Mask hides all but the last four characters of key.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// SupportedProviders returns the providers that take an API key.
func SupportedProviders() []string {
	return []string{"openai", "anthropic"}
}

// IsSupportedProvider reports whether provider takes an API key.
func IsSupportedProvider(provider string) bool {
	return slices.Contains(SupportedProviders(), provider)
}
