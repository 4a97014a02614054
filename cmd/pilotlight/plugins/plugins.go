// Package pluginscmder provides commands for inspecting transform plugins.
package pluginscmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/cliui"
	"github.com/papercomputeco/pilotlight/pkg/config"
	"github.com/papercomputeco/pilotlight/pkg/logger"
	"github.com/papercomputeco/pilotlight/pkg/plugin"
	"github.com/papercomputeco/pilotlight/pkg/session"
)

const pluginsLongDesc string = `Inspect the transform plugins pilotlight loads.

Plugins live in the plugins/ directory next to the pilotlight executable, or
in plugins.dir when configured. Each plugin is a Go source file (interpreted)
or a Go plugin (.so) exporting one or both of:

  func TransformUserPrompt(input string) (string, bool)
  func TransformAssistantResponse(input string) (string, bool)

Examples:
  pilotlight plugins list
  pilotlight plugins dir
  pilotlight plugins apply "hello"
  pilotlight plugins apply --inbound "model reply"`

const pluginsShortDesc string = "Inspect transform plugins"

type pluginsCommander struct {
	pluginsDir string
	inbound    bool
	debug      bool
	out        io.Writer
	logger     *zap.Logger
}

func NewPluginsCmd() *cobra.Command {
	cmder := &pluginsCommander{}

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: pluginsShortDesc,
		Long:  pluginsLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logger = logger.New(logger.WithDebug(cmder.debug))

			if cmder.pluginsDir != "" {
				return nil
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			dir, err := session.PluginDir(config.FromViper(v))
			if err != nil {
				return err
			}
			cmder.pluginsDir = dir
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cmder.pluginsDir, config.FlagPluginsDir, "", config.ChatFlags[config.FlagPluginsDir].Description)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List loaded plugins and their transforms",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.runList()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the plugin directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmder.out, cmder.pluginsDir)
			return err
		},
	})

	applyCmd := &cobra.Command{
		Use:   "apply <text>",
		Short: "Run text through the plugin chain and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runApply(cmd, strings.Join(args, " "))
		},
	}
	applyCmd.Flags().BoolVar(&cmder.inbound, "inbound", false, "Apply the assistant-response transforms instead of the user-prompt ones")
	cmd.AddCommand(applyCmd)

	return cmd
}

func (c *pluginsCommander) load() *plugin.Registry {
	reg := plugin.NewRegistry(c.pluginsDir, plugin.WithLogger(c.logger))
	reg.Load()
	return reg
}

func (c *pluginsCommander) runList() error {
	reg := c.load()
	defer reg.Unload()

	fmt.Fprintf(c.out, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Plugin dir:"),
		cliui.DimStyle.Render(c.pluginsDir),
	)

	records := reg.Records()
	if len(records) == 0 {
		fmt.Fprintf(c.out, "  %s No plugins loaded.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Fprintf(c.out, "  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("%d plugin(s), in load order", len(records))))
	for i, rec := range records {
		var kinds []string
		if rec.Outbound {
			kinds = append(kinds, plugin.Outbound.String())
		}
		if rec.Inbound {
			kinds = append(kinds, plugin.Inbound.String())
		}
		fmt.Fprintf(c.out, "  %d. %s  %s\n",
			i+1,
			cliui.NameStyle.Render(rec.Name),
			cliui.DimStyle.Render(strings.Join(kinds, ", ")),
		)
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *pluginsCommander) runApply(cmd *cobra.Command, text string) error {
	reg := c.load()
	defer reg.Unload()

	kind := plugin.Outbound
	if c.inbound {
		kind = plugin.Inbound
	}

	out := plugin.NewPipeline(reg, plugin.WithPipelineLogger(c.logger)).Apply(cmd.Context(), kind, text)
	_, err := fmt.Fprintln(c.out, out)
	return err
}
