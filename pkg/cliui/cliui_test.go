package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a success mark and returns nil", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "loading plugins", func() error { return nil })).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("loading plugins"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("returns the function's error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		Expect(cliui.Step(&buf, "saving", func() error { return boom })).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds with one decimal", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("RoleLabel", func() {
	It("labels each role", func() {
		Expect(cliui.RoleLabel(chat.RoleUser)).To(Equal("You: "))
		Expect(cliui.RoleLabel(chat.RoleAssistant)).To(Equal("Assistant: "))
		Expect(cliui.RoleLabel(chat.RoleSystem)).To(Equal("System: "))
	})

	It("keeps the label text when styled", func() {
		Expect(cliui.StyledRoleLabel(chat.RoleAssistant)).To(ContainSubstring("Assistant:"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("keeps the text of the document", func() {
		out, err := cliui.RenderMarkdown("# Title\n\nsome **bold** text")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("bold"))
	})
})

var _ = Describe("Spinner", func() {
	It("replaces the animated line with a mark and the elapsed time", func() {
		var buf bytes.Buffer
		s := cliui.StartSpinner(&buf, "waiting for openai")
		time.Sleep(100 * time.Millisecond)
		elapsed := s.Stop(nil)

		Expect(elapsed).To(BeNumerically(">=", 100*time.Millisecond))
		Expect(buf.String()).To(ContainSubstring("waiting for openai"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
	})
})

var _ = Describe("terminal detection", func() {
	It("treats buffers as non-terminals", func() {
		var buf bytes.Buffer
		Expect(cliui.IsTerminal(&buf)).To(BeFalse())
		Expect(cliui.Width(&buf)).To(Equal(cliui.DefaultWidth))
	})
})

var _ = Describe("Markdown", func() {
	It("renders the same content the same way at a given width", func() {
		md := cliui.NewMarkdown()
		first, err := md.Render("- one\n- two", 40)
		Expect(err).NotTo(HaveOccurred())
		second, err := md.Render("- one\n- two", 40)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
		Expect(first).To(ContainSubstring("two"))
	})

	It("falls back to the default width", func() {
		out, err := cliui.NewMarkdown().Render("plain", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("plain"))
	})
})
