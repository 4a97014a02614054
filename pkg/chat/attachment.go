package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxAttachmentBytes is the largest file accepted as an attachment.
const DefaultMaxAttachmentBytes int64 = 10 * 1024 * 1024

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Attachment describes a file carried by a turn. Data is the standard base64
// encoding of the file contents.
type Attachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Data     string `json:"data"`
}

// NewAttachment encodes raw file contents into an Attachment.
func NewAttachment(filename string, data []byte) Attachment {
	name := filepath.Base(filename)
	return Attachment{
		Filename: name,
		MimeType: MimeTypeFor(name),
		Size:     int64(len(data)),
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// LoadAttachment reads a file from disk, checking its extension and size.
// A maxBytes of zero or less uses DefaultMaxAttachmentBytes.
func LoadAttachment(path string, maxBytes int64) (Attachment, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAttachmentBytes
	}

	if !ValidateFileType(path) {
		return Attachment{}, fmt.Errorf("unsupported attachment type: %s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("attachment is a directory: %s", path)
	}
	if info.Size() > maxBytes {
		return Attachment{}, fmt.Errorf("attachment %s is %d bytes, limit is %d", filepath.Base(path), info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}

	return NewAttachment(path, data), nil
}

// MimeTypeFor returns the MIME type for a filename based on its extension.
func MimeTypeFor(filename string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// ValidateFileType reports whether the file extension is an accepted attachment type.
func ValidateFileType(filename string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Decode returns the raw attachment bytes.
func (a Attachment) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Data)
}
