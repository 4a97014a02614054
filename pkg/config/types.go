package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent pilotlight configuration stored as
// config.toml in the .pilotlight/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Backend     BackendConfig     `toml:"backend"`
	Plugins     PluginsConfig     `toml:"plugins"`
	History     HistoryConfig     `toml:"history"`
	Attachments AttachmentsConfig `toml:"attachments"`
	Events      EventsConfig      `toml:"events"`
	Chat        ChatConfig        `toml:"chat"`
}

// BackendConfig selects and configures the completion backend.
type BackendConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	StubMode bool   `toml:"stub_mode,omitempty"`
	Timeout  string `toml:"timeout,omitempty"`
}

// PluginsConfig holds plugin discovery and invocation settings.
// An empty Dir means the plugins/ directory next to the executable.
type PluginsConfig struct {
	Dir            string `toml:"dir,omitempty"`
	MaxOutputChars int    `toml:"max_output_chars,omitempty"`
	CallTimeout    string `toml:"call_timeout,omitempty"`
	Watch          bool   `toml:"watch,omitempty"`
}

// HistoryConfig selects where conversation history is persisted.
// Path is a directory for the jsonfile driver and a database file for sqlite.
type HistoryConfig struct {
	Driver       string `toml:"driver,omitempty"`
	Path         string `toml:"path,omitempty"`
	DSN          string `toml:"dsn,omitempty"`
	Conversation string `toml:"conversation,omitempty"`
}

// AttachmentsConfig holds attachment limits.
type AttachmentsConfig struct {
	MaxBytes int64 `toml:"max_bytes,omitempty"`
}

// EventsConfig configures the optional turn event publisher.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

// BackendTimeout parses backend.timeout, falling back to the default.
func (c *Config) BackendTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, defaultBackendTimeout)
}

// PluginCallTimeout parses plugins.call_timeout, falling back to the default.
// "0" disables the per-call bound.
func (c *Config) PluginCallTimeout() time.Duration {
	return parseDuration(c.Plugins.CallTimeout, defaultPluginCallTimeout)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func setBool(key string, target *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target = b
		return nil
	}
}

func setDuration(key string, target *string) func(string) error {
	return func(v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target = v
		return nil
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backend.provider": {
		get: func(c *Config) string { return c.Backend.Provider },
		set: func(c *Config, v string) error { c.Backend.Provider = v; return nil },
	},
	"backend.model": {
		get: func(c *Config) string { return c.Backend.Model },
		set: func(c *Config, v string) error { c.Backend.Model = v; return nil },
	},
	"backend.base_url": {
		get: func(c *Config) string { return c.Backend.BaseURL },
		set: func(c *Config, v string) error { c.Backend.BaseURL = v; return nil },
	},
	"backend.api_key": {
		get: func(c *Config) string { return c.Backend.APIKey },
		set: func(c *Config, v string) error { c.Backend.APIKey = v; return nil },
	},
	"backend.stub_mode": {
		get: func(c *Config) string { return strconv.FormatBool(c.Backend.StubMode) },
		set: func(c *Config, v string) error { return setBool("backend.stub_mode", &c.Backend.StubMode)(v) },
	},
	"backend.timeout": {
		get: func(c *Config) string { return c.Backend.Timeout },
		set: func(c *Config, v string) error { return setDuration("backend.timeout", &c.Backend.Timeout)(v) },
	},
	"plugins.dir": {
		get: func(c *Config) string { return c.Plugins.Dir },
		set: func(c *Config, v string) error { c.Plugins.Dir = v; return nil },
	},
	"plugins.max_output_chars": {
		get: func(c *Config) string {
			if c.Plugins.MaxOutputChars == 0 {
				return ""
			}
			return strconv.Itoa(c.Plugins.MaxOutputChars)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for plugins.max_output_chars: %q", v)
			}
			c.Plugins.MaxOutputChars = n
			return nil
		},
	},
	"plugins.call_timeout": {
		get: func(c *Config) string { return c.Plugins.CallTimeout },
		set: func(c *Config, v string) error { return setDuration("plugins.call_timeout", &c.Plugins.CallTimeout)(v) },
	},
	"plugins.watch": {
		get: func(c *Config) string { return strconv.FormatBool(c.Plugins.Watch) },
		set: func(c *Config, v string) error { return setBool("plugins.watch", &c.Plugins.Watch)(v) },
	},
	"history.driver": {
		get: func(c *Config) string { return c.History.Driver },
		set: func(c *Config, v string) error { c.History.Driver = v; return nil },
	},
	"history.path": {
		get: func(c *Config) string { return c.History.Path },
		set: func(c *Config, v string) error { c.History.Path = v; return nil },
	},
	"history.dsn": {
		get: func(c *Config) string { return c.History.DSN },
		set: func(c *Config, v string) error { c.History.DSN = v; return nil },
	},
	"history.conversation": {
		get: func(c *Config) string { return c.History.Conversation },
		set: func(c *Config, v string) error { c.History.Conversation = v; return nil },
	},
	"attachments.max_bytes": {
		get: func(c *Config) string {
			if c.Attachments.MaxBytes == 0 {
				return ""
			}
			return strconv.FormatInt(c.Attachments.MaxBytes, 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for attachments.max_bytes: %q", v)
			}
			c.Attachments.MaxBytes = n
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.target": {
		get: func(c *Config) string { return c.Events.Target },
		set: func(c *Config, v string) error { c.Events.Target = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"chat.system_prompt": {
		get: func(c *Config) string { return c.Chat.SystemPrompt },
		set: func(c *Config, v string) error { c.Chat.SystemPrompt = v; return nil },
	},
}
