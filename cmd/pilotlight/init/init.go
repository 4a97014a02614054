// Package initcmder provides the init command for initializing a local
// .pilotlight directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/pilotlight/pkg/cliui"
	"github.com/papercomputeco/pilotlight/pkg/config"
)

const (
	dirName = ".pilotlight"
)

const initLongDesc string = `Initialize a new .pilotlight/ directory in the current working directory.

Creates a local .pilotlight/ directory that takes precedence over the default
~/.pilotlight/ directory for configuration, credentials, and chat history.

With --preset, a config.toml for the named backend is written as well.
Existing config files are left alone unless --force is given.

Presets: openai, anthropic, ollama, stub

Examples:
  pilotlight init
  pilotlight init --preset ollama
  pilotlight init --preset stub --force`

const initShortDesc string = "Initialize a local .pilotlight/ directory"

type initCommander struct {
	preset string
	force  bool
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Write a config.toml for a backend preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Overwrite an existing config.toml")

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(c.out, "Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .pilotlight directory: %w", err)
		}
		fmt.Fprintf(c.out, "Initialized .pilotlight directory: %s\n", dir)
	}

	if c.preset == "" {
		return nil
	}
	return c.writePreset(dir)
}

func (c *initCommander) writePreset(dir string) error {
	cfg, err := config.PresetConfig(c.preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(cfger.GetTarget()); err == nil && !c.force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", cfger.GetTarget())
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s Wrote %s preset to %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(c.preset),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
