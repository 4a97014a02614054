// Package historycmder provides commands for the saved conversation history.
package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/cliui"
	"github.com/papercomputeco/pilotlight/pkg/config"
	"github.com/papercomputeco/pilotlight/pkg/dotdir"
	"github.com/papercomputeco/pilotlight/pkg/session"
	"github.com/papercomputeco/pilotlight/pkg/storage"
)

const historyLongDesc string = `Inspect and manage saved conversations.

Conversations are saved by "pilotlight chat" after every exchange, using the
configured history driver (jsonfile by default, or sqlite / postgres).

Examples:
  pilotlight history list
  pilotlight history show
  pilotlight history show --conversation work
  pilotlight history export backup.json
  pilotlight history clear
  pilotlight history path`

const historyShortDesc string = "Inspect and manage saved conversations"

var historyFlagKeys = []string{
	config.FlagHistory,
	config.FlagHistoryPath,
	config.FlagConversation,
}

type historyCommander struct {
	driverType   string
	path         string
	conversation string

	cfg    *config.Config
	target string
	out    io.Writer
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ChatFlags, historyFlagKeys)
			cmder.cfg = config.FromViper(v)

			cmder.target, err = dotdir.NewManager().Target(configDir)
			if err != nil {
				return fmt.Errorf("resolving config dir: %w", err)
			}
			return nil
		},
	}

	config.AddStringFlag(cmd, config.ChatFlags, config.FlagHistory, &cmder.driverType)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagHistoryPath, &cmder.path)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagConversation, &cmder.conversation)
	promoteFlags(cmd)

	cmd.AddCommand(cmder.newShowCmd())
	cmd.AddCommand(cmder.newListCmd())
	cmd.AddCommand(cmder.newClearCmd())
	cmd.AddCommand(cmder.newPathCmd())
	cmd.AddCommand(cmder.newExportCmd())

	return cmd
}

// promoteFlags makes the local history flags visible to every subcommand.
func promoteFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(cmd.Flags())
}

func (c *historyCommander) withDriver(ctx context.Context, fn func(storage.Driver) error) error {
	d, err := session.OpenDriver(ctx, c.cfg, c.target)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

func (c *historyCommander) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDriver(cmd.Context(), func(d storage.Driver) error {
				turns, err := d.Load(cmd.Context(), c.cfg.History.Conversation)
				var notFound storage.ErrNotFound
				if errors.As(err, &notFound) {
					fmt.Fprintf(c.out, "\n  %s No saved conversation named %s.\n\n",
						cliui.DimStyle.Render("●"),
						cliui.NameStyle.Render(c.cfg.History.Conversation),
					)
					return nil
				}
				if err != nil {
					return err
				}
				c.printTurns(turns)
				return nil
			})
		},
	}
}

func (c *historyCommander) printTurns(turns []chat.Turn) {
	fmt.Fprintln(c.out)
	for _, t := range turns {
		fmt.Fprintf(c.out, "%s%s\n", cliui.StyledRoleLabel(t.Role), t.Content)
		for _, a := range t.Attachments {
			fmt.Fprintf(c.out, "  %s %s %s\n",
				cliui.DimStyle.Render("📎"),
				a.Filename,
				cliui.DimStyle.Render(fmt.Sprintf("(%s, %d bytes)", a.MimeType, a.Size)),
			)
		}
		fmt.Fprintln(c.out)
	}
}

func (c *historyCommander) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDriver(cmd.Context(), func(d storage.Driver) error {
				names, err := d.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintf(c.out, "\n  %s No saved conversations.\n\n", cliui.DimStyle.Render("●"))
					return nil
				}
				for _, name := range names {
					marker := " "
					if name == c.cfg.History.Conversation {
						marker = "*"
					}
					fmt.Fprintf(c.out, "%s %s\n", marker, name)
				}
				return nil
			})
		},
	}
}

func (c *historyCommander) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Reset the saved conversation to just the system prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDriver(cmd.Context(), func(d storage.Driver) error {
				seed := chat.NewTurn(chat.RoleSystem, c.cfg.Chat.SystemPrompt)
				if err := d.Save(cmd.Context(), c.cfg.History.Conversation, []chat.Turn{seed}); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "  %s Cleared %s\n", cliui.SuccessMark, cliui.NameStyle.Render(c.cfg.History.Conversation))
				return nil
			})
		},
	}
}

func (c *historyCommander) newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where history is stored",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			switch c.cfg.History.Driver {
			case "postgres":
				_, err := fmt.Fprintln(c.out, "postgres (history.dsn)")
				return err
			case "inmemory", "memory":
				_, err := fmt.Fprintln(c.out, "in-memory (not persisted)")
				return err
			}
			_, err := fmt.Fprintln(c.out, session.HistoryPath(c.cfg, c.target))
			return err
		},
	}
}

func (c *historyCommander) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the saved conversation to a JSON history file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDriver(cmd.Context(), func(d storage.Driver) error {
				turns, err := d.Load(cmd.Context(), c.cfg.History.Conversation)
				if err != nil {
					return err
				}
				if err := chat.WriteTurns(args[0], turns); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "  %s Exported %d turns to %s\n", cliui.SuccessMark, len(turns), args[0])
				return nil
			})
		},
	}
}
