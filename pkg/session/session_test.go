package session_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/config"
	"github.com/papercomputeco/pilotlight/pkg/session"
	"github.com/papercomputeco/pilotlight/pkg/storage/jsonfile"
	"github.com/papercomputeco/pilotlight/pkg/storage/sqlite"
)

const prefixPlugin = `package prefix

func TransformUserPrompt(input string) (string, bool) {
	return "[A] " + input, true
}
`

var _ = Describe("Session", func() {
	var (
		ctx       context.Context
		configDir string
		pluginDir string
		cfg       *config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		configDir = GinkgoT().TempDir()
		pluginDir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(pluginDir, "prefix.go"), []byte(prefixPlugin), 0o600)).To(Succeed())

		cfg = config.NewDefaultConfig()
		cfg.Backend.StubMode = true
		cfg.Plugins.Dir = pluginDir
	})

	open := func() *session.Session {
		s, err := session.Open(ctx, session.Options{Config: cfg, ConfigDir: configDir})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
		return s
	}

	It("loads plugins and runs a stubbed exchange", func() {
		s := open()
		Expect(s.Registry.Count()).To(Equal(1))

		user := s.Engine.AddUserMessage(ctx, "hi", nil)
		Expect(user.Content).To(Equal("[A] hi"))

		reply := s.Engine.GetAssistantResponse(ctx)
		Expect(reply.Content).To(HavePrefix("(Stub)"))
		Expect(reply.Content).To(ContainSubstring(`You asked: "[A] hi"`))
	})

	It("persists and restores the conversation", func() {
		s := open()
		restored, err := s.Restore(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(BeFalse())

		s.Engine.AddUserMessage(ctx, "remember me", nil)
		s.Engine.GetAssistantResponse(ctx)
		Expect(s.Persist(ctx)).To(Succeed())
		Expect(s.Close()).To(Succeed())

		Expect(filepath.Join(configDir, "history", "history.json")).To(BeAnExistingFile())

		again := open()
		restored, err = again.Restore(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(BeTrue())
		Expect(again.Engine.History()).To(HaveLen(3))
		Expect(again.Engine.History()[1].Content).To(Equal("[A] remember me"))
	})

	It("rejects an unknown provider", func() {
		cfg.Backend.StubMode = false
		cfg.Backend.Provider = "palm"

		_, err := session.Open(ctx, session.Options{Config: cfg, ConfigDir: configDir})
		Expect(err).To(MatchError(ContainSubstring("creating backend")))
	})

	It("requires a config", func() {
		_, err := session.Open(ctx, session.Options{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("HistoryPath", func() {
	It("uses history.path when set", func() {
		cfg := config.NewDefaultConfig()
		cfg.History.Path = "/tmp/elsewhere"
		Expect(session.HistoryPath(cfg, "/home/u/.pilotlight")).To(Equal("/tmp/elsewhere"))
	})

	It("defaults per driver", func() {
		cfg := config.NewDefaultConfig()
		Expect(session.HistoryPath(cfg, "/t")).To(Equal(filepath.Join("/t", "history")))

		cfg.History.Driver = "sqlite"
		Expect(session.HistoryPath(cfg, "/t")).To(Equal(filepath.Join("/t", "history.db")))

		cfg.History.Driver = "postgres"
		Expect(session.HistoryPath(cfg, "/t")).To(BeEmpty())
	})
})

var _ = Describe("OpenDriver", func() {
	It("opens the configured driver inside the target", func() {
		target := GinkgoT().TempDir()
		cfg := config.NewDefaultConfig()

		d, err := session.OpenDriver(context.Background(), cfg, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&jsonfile.Driver{}))

		cfg.History.Driver = "sqlite"
		d, err = session.OpenDriver(context.Background(), cfg, target)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(d.Close()).To(Succeed())
	})
})

var _ = Describe("PluginDir", func() {
	It("prefers plugins.dir", func() {
		cfg := config.NewDefaultConfig()
		cfg.Plugins.Dir = "/opt/pilotlight/plugins"
		Expect(session.PluginDir(cfg)).To(Equal("/opt/pilotlight/plugins"))
	})

	It("falls back to plugins next to the executable", func() {
		dir, err := session.PluginDir(config.NewDefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(dir)).To(Equal("plugins"))
	})
})
