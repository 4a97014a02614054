// Package session assembles a runnable chat from configuration: the plugin
// registry and pipeline, the completion backend, the history driver, the
// event publisher, and the engine that ties them together.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/backend"
	"github.com/papercomputeco/pilotlight/pkg/config"
	"github.com/papercomputeco/pilotlight/pkg/credentials"
	"github.com/papercomputeco/pilotlight/pkg/dotdir"
	"github.com/papercomputeco/pilotlight/pkg/engine"
	"github.com/papercomputeco/pilotlight/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/pilotlight/pkg/eventstream/utils"
	"github.com/papercomputeco/pilotlight/pkg/plugin"
	"github.com/papercomputeco/pilotlight/pkg/storage"
	storageutils "github.com/papercomputeco/pilotlight/pkg/storage/utils"
)

// Options configures Open.
type Options struct {
	// Config is the resolved configuration. Required.
	Config *config.Config

	// ConfigDir overrides the .pilotlight/ directory.
	ConfigDir string

	Logger *zap.Logger
}

// Session owns every resource a conversation needs. Close releases them.
type Session struct {
	Config    *config.Config
	Engine    *engine.Engine
	Registry  *plugin.Registry
	Pipeline  *plugin.Pipeline
	Driver    storage.Driver
	Publisher eventstream.Publisher

	logger *zap.Logger
}

// Open builds a session and loads the plugins. It does not restore history;
// call Restore for that.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("session requires a config")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	target, err := dotdir.NewManager().Target(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	pluginDir, err := PluginDir(cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{Config: cfg, logger: logger}

	s.Registry = plugin.NewRegistry(pluginDir, plugin.WithLogger(logger))
	s.Registry.Load()
	s.Pipeline = plugin.NewPipeline(s.Registry,
		plugin.WithCapacity(cfg.Plugins.MaxOutputChars),
		plugin.WithCallTimeout(cfg.PluginCallTimeout()),
		plugin.WithPipelineLogger(logger),
	)

	logger.Debug("plugins loaded",
		zap.String("dir", pluginDir),
		zap.Int("count", s.Registry.Count()),
	)

	creds, err := credentials.NewManager(opts.ConfigDir)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	completer, err := backend.New(backend.Config{
		Provider: cfg.Backend.Provider,
		Model:    cfg.Backend.Model,
		BaseURL:  cfg.Backend.BaseURL,
		APIKey:   credentials.ResolveKey(creds, cfg.Backend.Provider, cfg.Backend.APIKey),
		StubMode: cfg.Backend.StubMode,
		Timeout:  cfg.BackendTimeout(),
		Logger:   logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	s.Driver, err = OpenDriver(ctx, cfg, target)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Target:       cfg.Events.Target,
		Topic:        cfg.Events.Topic,
		Logger:       logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	host, _ := os.Hostname()
	s.Engine, err = engine.New(engine.Config{
		Completer:    completer,
		Pipeline:     s.Pipeline,
		Publisher:    s.Publisher,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Conversation: cfg.History.Conversation,
		Source: eventstream.EventSource{
			Provider: cfg.Backend.Provider,
			Model:    cfg.Backend.Model,
			Host:     host,
		},
		Logger: logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Restore loads the configured conversation into the engine. It reports
// false when nothing was stored yet.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	err := s.Engine.Load(ctx, s.Driver)
	if err == nil {
		return true, nil
	}

	var notFound storage.ErrNotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("loading history: %w", err)
}

// Persist saves the engine's conversation.
func (s *Session) Persist(ctx context.Context) error {
	if err := s.Engine.Save(ctx, s.Driver); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Close unloads the plugins and closes the publisher and driver.
func (s *Session) Close() error {
	var errs []error

	if s.Registry != nil {
		s.Registry.Unload()
	}
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event publisher: %w", err))
		}
	}
	if s.Driver != nil {
		if err := s.Driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing history driver: %w", err))
		}
	}

	return errors.Join(errs...)
}

// PluginDir returns plugins.dir, or the plugins/ directory next to the
// executable when unset.
func PluginDir(cfg *config.Config) (string, error) {
	if cfg.Plugins.Dir != "" {
		return cfg.Plugins.Dir, nil
	}

	dir, err := dotdir.NewManager().PluginDir()
	if err != nil {
		return "", fmt.Errorf("resolving plugin dir: %w", err)
	}
	return dir, nil
}

// HistoryPath returns history.path, or the driver's default location inside
// the .pilotlight/ directory target.
func HistoryPath(cfg *config.Config, target string) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}

	switch cfg.History.Driver {
	case "sqlite":
		return dotdir.Layout(target).HistoryDB()
	case "postgres", "inmemory", "memory":
		return ""
	default:
		return dotdir.Layout(target).History()
	}
}

// OpenDriver opens the configured history driver.
func OpenDriver(ctx context.Context, cfg *config.Config, target string) (storage.Driver, error) {
	d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
		DriverType: cfg.History.Driver,
		Path:       HistoryPath(cfg, target),
		DSN:        cfg.History.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return d, nil
}
