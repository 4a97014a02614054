package credentials

import "time"

// Credentials is the on-disk shape of credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential is one stored API key.
type ProviderCredential struct {
	APIKey    string    `toml:"api_key"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// KeySource records where a resolved API key came from.
type KeySource int

const (
	SourceNone KeySource = iota
	SourceExplicit
	SourceStored
	SourceEnv
)

func (s KeySource) String() string {
	switch s {
	case SourceExplicit:
		return "config"
	case SourceStored:
		return "credentials.toml"
	case SourceEnv:
		return "environment"
	default:
		return "none"
	}
}

// Resolution is the outcome of resolving a provider's API key.
type Resolution struct {
	Provider string
	Key      string
	Source   KeySource

	// EnvVar is the variable the key was read from when Source is SourceEnv.
	EnvVar string
}

// Found reports whether a key was resolved.
func (r Resolution) Found() bool {
	return r.Key != ""
}
