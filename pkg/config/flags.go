package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --conversation
// on both "pilotlight chat" and "pilotlight history show").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "backend.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagProvider     = "provider"
	FlagModel        = "model"
	FlagBaseURL      = "base-url"
	FlagStub         = "stub"
	FlagPluginsDir   = "plugins-dir"
	FlagWatchPlugins = "watch-plugins"
	FlagHistory      = "history-driver"
	FlagHistoryPath  = "history-path"
	FlagConversation = "conversation"
)

// ChatFlags are the flags shared by commands that run or inspect a conversation.
var ChatFlags = FlagSet{
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "backend.provider",
		Description: "Completion backend provider (openai, anthropic, ollama)",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "backend.model",
		Description: "Model name sent to the backend",
	},
	FlagBaseURL: {
		Name:        "base-url",
		ViperKey:    "backend.base_url",
		Description: "Override the backend base URL",
	},
	FlagStub: {
		Name:        "stub",
		ViperKey:    "backend.stub_mode",
		Description: "Answer with deterministic stub replies instead of calling a backend",
	},
	FlagPluginsDir: {
		Name:        "plugins-dir",
		ViperKey:    "plugins.dir",
		Description: "Directory to load transform plugins from (default: plugins/ next to the executable)",
	},
	FlagWatchPlugins: {
		Name:        "watch-plugins",
		ViperKey:    "plugins.watch",
		Description: "Reload plugins when the plugin directory changes",
	},
	FlagHistory: {
		Name:        "history-driver",
		ViperKey:    "history.driver",
		Description: "History driver (jsonfile, sqlite, postgres)",
	},
	FlagHistoryPath: {
		Name:        "history-path",
		ViperKey:    "history.path",
		Description: "History directory (jsonfile) or database file (sqlite)",
	},
	FlagConversation: {
		Name:        "conversation",
		Shorthand:   "c",
		ViperKey:    "history.conversation",
		Description: "Conversation name to load and save",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
