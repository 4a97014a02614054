package chat_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
)

var _ = Describe("Attachment", func() {
	DescribeTable("MimeTypeFor",
		func(name, want string) {
			Expect(chat.MimeTypeFor(name)).To(Equal(want))
		},
		Entry("png", "a.png", "image/png"),
		Entry("jpg", "a.JPG", "image/jpeg"),
		Entry("jpeg", "a.jpeg", "image/jpeg"),
		Entry("gif", "a.gif", "image/gif"),
		Entry("bmp", "a.bmp", "image/bmp"),
		Entry("pdf", "a.pdf", "application/pdf"),
		Entry("txt", "a.txt", "text/plain"),
		Entry("doc", "a.doc", "application/msword"),
		Entry("docx", "a.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"),
		Entry("unknown", "a.exe", "application/octet-stream"),
	)

	It("rejects unsupported extensions", func() {
		Expect(chat.ValidateFileType("notes.txt")).To(BeTrue())
		Expect(chat.ValidateFileType("run.sh")).To(BeFalse())
		Expect(chat.ValidateFileType("noext")).To(BeFalse())
	})

	It("round trips payload bytes through base64", func() {
		att := chat.NewAttachment("/tmp/dir/photo.png", []byte{0x89, 0x50, 0x4e, 0x47})
		Expect(att.Filename).To(Equal("photo.png"))
		Expect(att.Size).To(Equal(int64(4)))

		raw, err := att.Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(Equal([]byte{0x89, 0x50, 0x4e, 0x47}))
	})

	Describe("LoadAttachment", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("loads a supported file", func() {
			path := filepath.Join(dir, "notes.txt")
			Expect(os.WriteFile(path, []byte("hello"), 0o600)).To(Succeed())

			att, err := chat.LoadAttachment(path, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(att.MimeType).To(Equal("text/plain"))
			Expect(att.Size).To(Equal(int64(5)))
		})

		It("rejects files over the size limit", func() {
			path := filepath.Join(dir, "big.txt")
			Expect(os.WriteFile(path, make([]byte, 32), 0o600)).To(Succeed())

			_, err := chat.LoadAttachment(path, 16)
			Expect(err).To(MatchError(ContainSubstring("limit")))
		})

		It("rejects unsupported types before reading", func() {
			_, err := chat.LoadAttachment(filepath.Join(dir, "missing.exe"), 0)
			Expect(err).To(MatchError(ContainSubstring("unsupported attachment type")))
		})
	})
})
