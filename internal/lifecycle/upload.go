package lifecycle

import (
	"path/filepath"
	"strings"

	"sace/internal/errdefs"
)

const DefaultMaxUploadBytes int64 = 10 << 20

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
}

// UploadPolicy is checked before any file leaves the machine.
type UploadPolicy struct {
	MaxBytes int64
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{MaxBytes: DefaultMaxUploadBytes}
}

func (p UploadPolicy) Check(fileName string, size int64) error {
	name := strings.TrimSpace(filepath.Base(fileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return errdefs.Invalid("a file is required")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return errdefs.Invalid("only PDF and DOCX files are allowed")
	}
	if size <= 0 {
		return errdefs.Invalid("file %s is empty", name)
	}
	if p.MaxBytes > 0 && size > p.MaxBytes {
		return errdefs.Invalid("file size must be less than %dMB", p.MaxBytes>>20)
	}
	return nil
}

// FileType is the upper-case type recorded for name, e.g. "PDF".
func FileType(name string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(name), "."))
}
