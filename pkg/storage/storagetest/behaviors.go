// Package storagetest holds the shared ginkgo specs every storage.Driver
// implementation runs.
package storagetest

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/storage"
)

// SampleTurns returns a small conversation with attachments.
func SampleTurns() []chat.Turn {
	return []chat.Turn{
		chat.NewTurn(chat.RoleSystem, "You are PilotLight, a helpful AI assistant."),
		chat.NewTurn(chat.RoleUser, "[A] describe these",
			chat.NewAttachment("notes.txt", []byte("hello")),
			chat.NewAttachment("pixel.png", []byte{0x89, 0x50}),
		),
		chat.NewTurn(chat.RoleAssistant, "ok [B]"),
	}
}

// DriverBehaviors registers the common driver specs. newDriver is called
// before each spec; the returned driver is closed afterwards.
func DriverBehaviors(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = newDriver()
		ctx = context.Background()
		DeferCleanup(func() {
			Expect(driver.Close()).To(Succeed())
		})
	})

	It("round trips roles, content, and attachments", func() {
		want := SampleTurns()
		Expect(driver.Save(ctx, "work", want)).To(Succeed())

		got, err := driver.Load(ctx, "work")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(len(want)))
		for i := range want {
			Expect(got[i].ID).To(Equal(want[i].ID))
			Expect(got[i].Role).To(Equal(want[i].Role))
			Expect(got[i].Content).To(Equal(want[i].Content))
			Expect(got[i].Attachments).To(Equal(want[i].Attachments))
			Expect(got[i].CreatedAt).NotTo(BeZero())
		}
	})

	It("replaces the previous contents on save", func() {
		Expect(driver.Save(ctx, "work", SampleTurns())).To(Succeed())
		Expect(driver.Save(ctx, "work", SampleTurns()[:1])).To(Succeed())

		got, err := driver.Load(ctx, "work")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		Expect(got[0].Role).To(Equal(chat.RoleSystem))
	})

	It("stores an empty conversation", func() {
		Expect(driver.Save(ctx, "empty", nil)).To(Succeed())

		got, err := driver.Load(ctx, "empty")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
	})

	It("reports a missing conversation as ErrNotFound", func() {
		_, err := driver.Load(ctx, "missing")
		var notFound storage.ErrNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Conversation).To(Equal("missing"))
	})

	It("lists and deletes conversations", func() {
		Expect(driver.Save(ctx, "b", SampleTurns())).To(Succeed())
		Expect(driver.Save(ctx, "a", SampleTurns())).To(Succeed())

		Expect(driver.List(ctx)).To(Equal([]string{"a", "b"}))

		Expect(driver.Delete(ctx, "a")).To(Succeed())
		Expect(driver.Delete(ctx, "a")).To(Succeed())
		Expect(driver.List(ctx)).To(Equal([]string{"b"}))
	})

	It("rejects unusable names", func() {
		Expect(driver.Save(ctx, "../escape", SampleTurns())).NotTo(Succeed())
		Expect(driver.Save(ctx, "", SampleTurns())).NotTo(Succeed())

		for _, name := range []string{"", "..", "../escape", `a\b`} {
			_, err := driver.Load(ctx, name)
			Expect(err).To(HaveOccurred(), name)
			var notFound storage.ErrNotFound
			Expect(errors.As(err, &notFound)).To(BeFalse(), name)

			Expect(driver.Delete(ctx, name)).NotTo(Succeed(), name)
		}
	})
}
