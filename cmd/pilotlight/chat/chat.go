// Package chatcmder provides the chat command: an interactive conversation
// whose messages pass through the loaded transform plugins.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/backend"
	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/cliui"
	"github.com/papercomputeco/pilotlight/pkg/config"
	"github.com/papercomputeco/pilotlight/pkg/logger"
	"github.com/papercomputeco/pilotlight/pkg/plugin"
	"github.com/papercomputeco/pilotlight/pkg/session"
)

const chatLongDesc string = `Start an interactive chat session.

Each message is passed through the outbound transform of every loaded plugin,
sent to the completion backend together with the rest of the conversation,
and the reply is passed through every inbound transform. The conversation is
saved after each exchange and resumed the next time you run chat.

Commands inside the session:
  /attach <path>   Attach a file to your next message
  /clear           Start over with only the system prompt
  /plugins         List the loaded plugins
  /history         Print the conversation so far
  /help            Show this list
  /exit, /quit     Save and quit (Ctrl+D works too)

Examples:
  pilotlight chat
  pilotlight chat --stub
  pilotlight chat --provider ollama --model llama3.2
  pilotlight chat --conversation work --watch-plugins`

const chatShortDesc string = "Start an interactive chat session"

const helpText = `/attach <path>   Attach a file to your next message
/clear           Start over with only the system prompt
/plugins         List the loaded plugins
/history         Print the conversation so far
/help            Show this list
/exit, /quit     Save and quit`

var chatFlagKeys = []string{
	config.FlagProvider,
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagStub,
	config.FlagPluginsDir,
	config.FlagWatchPlugins,
	config.FlagHistory,
	config.FlagHistoryPath,
	config.FlagConversation,
}

type chatCommander struct {
	// flag targets; the resolved values live in cfg
	provider     string
	model        string
	baseURL      string
	stub         bool
	pluginsDir   string
	watchPlugins bool
	historyType  string
	historyPath  string
	conversation string
	plain        bool
	logFile      string

	configDir string
	debug     bool
	cfg       *config.Config

	in       io.Reader
	out      io.Writer
	render   bool
	markdown *cliui.Markdown
	logger   *zap.Logger

	sess    *session.Session
	pending []chat.Attachment
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ChatFlags, chatFlagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.render = !cmder.plain && cliui.IsTerminal(cmder.out)
			cmder.markdown = cliui.NewMarkdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.ChatFlags, config.FlagProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddBoolFlag(cmd, config.ChatFlags, config.FlagStub, &cmder.stub)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagPluginsDir, &cmder.pluginsDir)
	config.AddBoolFlag(cmd, config.ChatFlags, config.FlagWatchPlugins, &cmder.watchPlugins)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagHistory, &cmder.historyType)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagHistoryPath, &cmder.historyPath)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagConversation, &cmder.conversation)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print replies as plain text instead of rendered markdown")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write debug logs as JSON to this file")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug))
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(true),
			logger.WithJSON(true),
			logger.WithCaller(true),
			logger.WithWriter(f),
		))
	}
	defer func() { _ = c.logger.Sync() }()

	sess, err := session.Open(ctx, session.Options{
		Config:    c.cfg,
		ConfigDir: c.configDir,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.sess = sess
	defer func() {
		if err := sess.Close(); err != nil {
			c.logger.Warn("closing session", zap.Error(err))
		}
	}()

	restored, err := sess.Restore(ctx)
	if err != nil {
		return err
	}

	if c.cfg.Plugins.Watch {
		c.watch(ctx)
	}

	c.banner(restored)

	if err := c.loop(ctx); err != nil {
		return err
	}

	if err := sess.Persist(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *chatCommander) banner(restored bool) {
	fmt.Fprintln(c.out)
	if restored {
		fmt.Fprintf(c.out, "  %s Resuming %s %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(c.cfg.History.Conversation),
			cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", c.sess.Engine.Len())),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation %s\n",
			cliui.DimStyle.Render("●"),
			cliui.NameStyle.Render(c.cfg.History.Conversation),
		)
	}

	backendName := c.cfg.Backend.Provider
	if c.cfg.Backend.StubMode {
		backendName += " (stub)"
	}
	fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Backend:"), cliui.NameStyle.Render(backendName))
	if c.cfg.Backend.Model != "" {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(c.cfg.Backend.Model))
	}
	fmt.Fprintf(c.out, "  %s %d %s\n\n",
		cliui.KeyStyle.Render("Plugins:"),
		c.sess.Registry.Count(),
		cliui.DimStyle.Render("("+c.sess.Registry.Dir()+")"),
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /help for commands, /exit or Ctrl+D to quit."))
}

func (c *chatCommander) watch(ctx context.Context) {
	w := plugin.NewWatcher(c.sess.Registry,
		plugin.WithWatcherLogger(c.logger),
		plugin.OnReload(func(count int) {
			c.logger.Info("plugins reloaded", zap.Int("count", count))
		}),
	)

	go func() {
		if err := w.Run(ctx); err != nil {
			c.logger.Warn("plugin watcher stopped", zap.Error(err))
		}
	}()
}

func (c *chatCommander) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(c.out, cliui.StyledRoleLabel(chat.RoleUser))
		if !scanner.Scan() {
			// EOF or error
			break
		}
		// Interrupted while waiting on input: drop the line.
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := c.command(ctx, input); quit {
				return nil
			}
			continue
		}

		c.exchange(ctx, input)

		if ctx.Err() != nil {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// command handles a slash command and reports whether the session should end.
func (c *chatCommander) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true

	case "/clear":
		c.sess.Engine.ClearHistory()
		c.pending = nil
		c.persist(ctx)
		fmt.Fprintf(c.out, "  %s History cleared.\n\n", cliui.SuccessMark)

	case "/attach":
		c.attach(arg)

	case "/plugins":
		c.listPlugins()

	case "/history":
		for _, t := range c.sess.Engine.History() {
			fmt.Fprintf(c.out, "%s%s\n", cliui.StyledRoleLabel(t.Role), t.Content)
		}
		fmt.Fprintln(c.out)

	case "/help":
		fmt.Fprintf(c.out, "\n%s\n\n", helpText)

	default:
		fmt.Fprintf(c.out, "  %s Unknown command %s. /help lists commands.\n\n", cliui.FailMark, name)
	}
	return false
}

func (c *chatCommander) attach(path string) {
	if path == "" {
		fmt.Fprintf(c.out, "  %s Usage: /attach <path>\n\n", cliui.FailMark)
		return
	}

	att, err := chat.LoadAttachment(path, c.cfg.Attachments.MaxBytes)
	if err != nil {
		fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
		return
	}

	c.pending = append(c.pending, att)
	fmt.Fprintf(c.out, "  %s Attached %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(att.Filename),
		cliui.DimStyle.Render(fmt.Sprintf("(%s, %d bytes)", att.MimeType, att.Size)),
	)
}

func (c *chatCommander) listPlugins() {
	records := c.sess.Registry.Records()
	if len(records) == 0 {
		fmt.Fprintf(c.out, "  %s No plugins loaded.\n\n", cliui.DimStyle.Render("●"))
		return
	}
	for _, rec := range records {
		var kinds []string
		if rec.Outbound {
			kinds = append(kinds, plugin.Outbound.String())
		}
		if rec.Inbound {
			kinds = append(kinds, plugin.Inbound.String())
		}
		fmt.Fprintf(c.out, "  %s  %s\n", cliui.NameStyle.Render(rec.Name), cliui.DimStyle.Render(strings.Join(kinds, ", ")))
	}
	fmt.Fprintln(c.out)
}

func (c *chatCommander) exchange(ctx context.Context, input string) {
	user := c.sess.Engine.AddUserMessage(ctx, input, c.pending)
	c.pending = nil
	if user.Content != input {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render("→"), cliui.DimStyle.Render(user.Content))
	}

	var spinner *cliui.Spinner
	if c.render {
		spinner = cliui.StartSpinner(c.out, "waiting for "+c.cfg.Backend.Provider)
	}
	reply := c.sess.Engine.GetAssistantResponse(ctx)
	if spinner != nil {
		var err error
		if backend.IsError(reply.Content) {
			err = errors.New(reply.Content)
		}
		spinner.Stop(err)
	}

	c.printReply(reply.Content)
	c.persist(ctx)
}

func (c *chatCommander) printReply(content string) {
	label := cliui.StyledRoleLabel(chat.RoleAssistant)

	if backend.IsError(content) {
		fmt.Fprintf(c.out, "%s%s\n\n", label, cliui.ErrorStyle.Render(content))
		return
	}

	if c.render {
		if rendered, err := c.markdown.Render(content, cliui.Width(c.out)); err == nil {
			fmt.Fprintf(c.out, "%s\n%s", label, rendered)
			return
		}
	}
	fmt.Fprintf(c.out, "%s%s\n\n", label, content)
}

func (c *chatCommander) persist(ctx context.Context) {
	if err := c.sess.Persist(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(c.out, "  %s %v\n", cliui.FailMark, err)
	}
}
