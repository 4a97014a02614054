// Package configcmder provides the config command for managing persistent
// pilotlight configuration stored in the .pilotlight/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent pilotlight configuration.

Configuration is stored as config.toml in the .pilotlight/ directory and
provides default values for command flags. CLI flags and PILOTLIGHT_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  backend.provider, backend.model, backend.base_url, backend.api_key,
  backend.stub_mode, backend.timeout,
  plugins.dir, plugins.max_output_chars, plugins.call_timeout, plugins.watch,
  history.driver, history.path, history.dsn, history.conversation,
  attachments.max_bytes,
  events.provider, events.target, events.topic,
  chat.system_prompt

Use subcommands to get, set, or list configuration values:
  pilotlight config set <key> <value>    Set a configuration value
  pilotlight config get <key>            Get a configuration value
  pilotlight config list                 List all configuration values

Examples:
  pilotlight config set backend.provider anthropic
  pilotlight config set backend.stub_mode true
  pilotlight config get history.driver
  pilotlight config list`

const configShortDesc string = "Manage persistent pilotlight configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
