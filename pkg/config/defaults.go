package config

import "time"

const (
	defaultBackendProvider = "openai"
	defaultBackendTimeout  = 2 * time.Minute

	defaultMaxOutputChars    = 8192
	defaultPluginCallTimeout = 5 * time.Second

	defaultHistoryDriver       = "jsonfile"
	defaultHistoryConversation = "history"

	defaultAttachmentMaxBytes = 10 * 1024 * 1024

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "pilotlight.turns"

	// DefaultSystemPrompt seeds every new conversation.
	DefaultSystemPrompt = "You are PilotLight, a helpful AI assistant."
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backend: BackendConfig{
			Provider: defaultBackendProvider,
			Timeout:  defaultBackendTimeout.String(),
		},
		Plugins: PluginsConfig{
			MaxOutputChars: defaultMaxOutputChars,
			CallTimeout:    defaultPluginCallTimeout.String(),
		},
		History: HistoryConfig{
			Driver:       defaultHistoryDriver,
			Conversation: defaultHistoryConversation,
		},
		Attachments: AttachmentsConfig{
			MaxBytes: defaultAttachmentMaxBytes,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Chat: ChatConfig{
			SystemPrompt: DefaultSystemPrompt,
		},
	}
}
