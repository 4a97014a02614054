package chat_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
)

var _ = Describe("Log", func() {
	var log *chat.Log

	BeforeEach(func() {
		log = chat.NewLog()
	})

	It("keeps insertion order", func() {
		log.Append(chat.NewTurn(chat.RoleSystem, "sys"))
		log.Append(chat.NewTurn(chat.RoleUser, "one"))
		log.Append(chat.NewTurn(chat.RoleAssistant, "two"))

		turns := log.Turns()
		Expect(turns).To(HaveLen(3))
		Expect(turns[1].Content).To(Equal("one"))

		last, ok := log.Last()
		Expect(ok).To(BeTrue())
		Expect(last.Content).To(Equal("two"))
	})

	It("hands out copies", func() {
		log.Append(chat.NewTurn(chat.RoleUser, "original"))
		turns := log.Turns()
		turns[0].Content = "mutated"

		Expect(log.Turns()[0].Content).To(Equal("original"))
	})

	It("reports an empty log", func() {
		_, ok := log.Last()
		Expect(ok).To(BeFalse())
		Expect(log.Len()).To(Equal(0))
	})

	Describe("persistence", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "nested", "history.json")
		})

		It("round trips roles, content, and attachments", func() {
			log.Append(chat.NewTurn(chat.RoleSystem, "sys"))
			log.Append(chat.NewTurn(chat.RoleUser, "see file",
				chat.NewAttachment("a.txt", []byte("abc")),
				chat.NewAttachment("b.png", []byte{1, 2, 3}),
			))
			log.Append(chat.NewTurn(chat.RoleAssistant, "Error: boom"))

			Expect(log.SaveToFile(path)).To(Succeed())

			restored := chat.NewLog()
			Expect(restored.LoadFromFile(path)).To(Succeed())

			want := log.Turns()
			got := restored.Turns()
			Expect(got).To(HaveLen(len(want)))
			for i := range want {
				Expect(got[i].ID).To(Equal(want[i].ID))
				Expect(got[i].Role).To(Equal(want[i].Role))
				Expect(got[i].Content).To(Equal(want[i].Content))
				Expect(got[i].Attachments).To(HaveLen(len(want[i].Attachments)))
			}

			data, err := got[1].Attachments[1].Decode()
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte{1, 2, 3}))
		})

		It("writes an empty array for an empty log", func() {
			Expect(log.SaveToFile(path)).To(Succeed())
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("[]"))
		})

		It("leaves the log unchanged when the file is missing", func() {
			log.Append(chat.NewTurn(chat.RoleSystem, "sys"))
			Expect(log.LoadFromFile(path)).NotTo(Succeed())
			Expect(log.Len()).To(Equal(1))
		})

		It("leaves the log unchanged when the file is malformed", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
			Expect(os.WriteFile(path, []byte(`[{"role":"user","content":`), 0o600)).To(Succeed())

			log.Append(chat.NewTurn(chat.RoleSystem, "sys"))
			Expect(log.LoadFromFile(path)).To(MatchError(ContainSubstring("decoding history")))
			Expect(log.Turns()[0].Content).To(Equal("sys"))
		})

		It("normalizes missing ids and timestamps", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
			Expect(os.WriteFile(path, []byte(`[{"role":"narrator","content":"hi"}]`), 0o600)).To(Succeed())

			Expect(log.LoadFromFile(path)).To(Succeed())
			turn := log.Turns()[0]
			Expect(turn.ID).NotTo(BeEmpty())
			Expect(turn.CreatedAt).NotTo(BeZero())
			Expect(turn.Role).To(Equal(chat.RoleUser))
		})
	})
})
