// Package pilotlightcmder is the root pilotlight command.
package pilotlightcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/auth"
	chatcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/chat"
	configcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/config"
	historycmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/history"
	initcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/init"
	pluginscmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/plugins"
	versioncmder "github.com/papercomputeco/pilotlight/cmd/version"
)

const pilotlightLongDesc string = `PilotLight is a terminal chat client with pluggable text transforms.

Every message you send passes through the outbound transform of each plugin
in the plugins/ directory, and every reply passes through their inbound
transforms, before it is stored in the conversation history.

Get started with:
  pilotlight chat              Start an interactive chat
  pilotlight plugins list      Show the loaded transform plugins
  pilotlight history show      Print the saved conversation
  pilotlight auth openai       Store an API key`

const pilotlightShortDesc string = "PilotLight - plugin-mediated chat"

func NewPilotLightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pilotlight",
		Short:        pilotlightShortDesc,
		Long:         pilotlightLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .pilotlight/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(pluginscmder.NewPluginsCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
