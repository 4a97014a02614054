package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/pilotlight/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the PILOTLIGHT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (PILOTLIGHT_BACKEND_MODEL, PILOTLIGHT_PLUGINS_DIR, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: PILOTLIGHT_BACKEND_STUB_MODE, PILOTLIGHT_HISTORY_DRIVER, etc.
	v.SetEnvPrefix("PILOTLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Backend
	v.SetDefault("backend.provider", d.Backend.Provider)
	v.SetDefault("backend.model", d.Backend.Model)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.api_key", d.Backend.APIKey)
	v.SetDefault("backend.stub_mode", d.Backend.StubMode)
	v.SetDefault("backend.timeout", d.Backend.Timeout)

	// Plugins
	v.SetDefault("plugins.dir", d.Plugins.Dir)
	v.SetDefault("plugins.max_output_chars", d.Plugins.MaxOutputChars)
	v.SetDefault("plugins.call_timeout", d.Plugins.CallTimeout)
	v.SetDefault("plugins.watch", d.Plugins.Watch)

	// History
	v.SetDefault("history.driver", d.History.Driver)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.dsn", d.History.DSN)
	v.SetDefault("history.conversation", d.History.Conversation)

	// Attachments
	v.SetDefault("attachments.max_bytes", d.Attachments.MaxBytes)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.target", d.Events.Target)
	v.SetDefault("events.topic", d.Events.Topic)

	// Chat
	v.SetDefault("chat.system_prompt", d.Chat.SystemPrompt)
}

// FromViper builds a Config from the resolved viper values, so flag, env and
// file settings are all reflected.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Backend: BackendConfig{
			Provider: v.GetString("backend.provider"),
			Model:    v.GetString("backend.model"),
			BaseURL:  v.GetString("backend.base_url"),
			APIKey:   v.GetString("backend.api_key"),
			StubMode: v.GetBool("backend.stub_mode"),
			Timeout:  v.GetString("backend.timeout"),
		},
		Plugins: PluginsConfig{
			Dir:            v.GetString("plugins.dir"),
			MaxOutputChars: v.GetInt("plugins.max_output_chars"),
			CallTimeout:    v.GetString("plugins.call_timeout"),
			Watch:          v.GetBool("plugins.watch"),
		},
		History: HistoryConfig{
			Driver:       v.GetString("history.driver"),
			Path:         v.GetString("history.path"),
			DSN:          v.GetString("history.dsn"),
			Conversation: v.GetString("history.conversation"),
		},
		Attachments: AttachmentsConfig{
			MaxBytes: v.GetInt64("attachments.max_bytes"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Target:   v.GetString("events.target"),
			Topic:    v.GetString("events.topic"),
		},
		Chat: ChatConfig{
			SystemPrompt: v.GetString("chat.system_prompt"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
