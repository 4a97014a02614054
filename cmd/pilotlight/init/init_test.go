package initcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight/init"
	"github.com/papercomputeco/pilotlight/pkg/config"
)

var _ = Describe("Init command", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})
	})

	run := func(args ...string) (string, error) {
		cmd := initcmder.NewInitCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	It("creates the local directory", func() {
		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Initialized"))
		Expect(filepath.Join(tmpDir, ".pilotlight")).To(BeADirectory())
	})

	It("is a no-op when already initialized", func() {
		_, err := run()
		Expect(err).NotTo(HaveOccurred())

		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Already initialized"))
	})

	It("writes a preset config", func() {
		_, err := run("--preset", "ollama")
		Expect(err).NotTo(HaveOccurred())

		cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".pilotlight"))
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Backend.Provider).To(Equal("ollama"))
	})

	It("refuses to overwrite a config without --force", func() {
		_, err := run("--preset", "stub")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("--preset", "openai")
		Expect(err).To(MatchError(ContainSubstring("already exists")))

		_, err = run("--preset", "openai", "--force")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects unknown presets", func() {
		_, err := run("--preset", "palm")
		Expect(err).To(HaveOccurred())
	})
})
