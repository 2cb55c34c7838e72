// Package upload stores product images under generated unique names so
// the storage backend can be swapped without touching handler code.
package upload

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Store saves and removes uploaded image content. Save generates the
// stored name; callers persist that name, never the browser's filename.
type Store interface {
	// Save writes the content and returns the generated filename.
	// ext is the original file extension, including the leading dot.
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	// Delete removes a previously saved file. Deleting a name that no
	// longer exists is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the browser-facing URL for a stored name.
	URL(name string) string
}

// NewFilename returns a unique filename: a random hex token plus the
// sanitized original extension.
func NewFilename(ext string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return token + sanitizeExt(ext)
}

// sanitizeExt reduces the browser-supplied extension to one dot followed
// by alphanumerics, dropping path separators and anything else an
// attacker could smuggle in via the uploaded file's name.
func sanitizeExt(ext string) string {
	i := strings.LastIndex(ext, ".")
	if i < 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range ext[i+1:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + strings.ToLower(b.String())
}
