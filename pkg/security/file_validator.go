package security

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Error        string
}

// FilePolicy is the whitelist applied to one kind of upload.
type FilePolicy struct {
	Extensions []string
	MIMETypes  []string
	MaxBytes   int64
}

var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

var (
	PDFPolicy = FilePolicy{
		Extensions: []string{".pdf"},
		MIMETypes:  []string{"application/pdf"},
	}
	ImagePolicy = FilePolicy{
		Extensions: []string{".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"image/jpeg", "image/png"},
	}
	ProofPolicy = FilePolicy{
		Extensions: []string{".pdf", ".jpg", ".jpeg", ".png"},
		MIMETypes:  []string{"application/pdf", "image/jpeg", "image/png"},
	}
)

// WithMaxBytes returns a copy of the policy with a size cap.
func (p FilePolicy) WithMaxBytes(n int64) FilePolicy {
	p.MaxBytes = n
	return p
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateFile checks, in order: size, extension whitelist, magic bytes, sniffed MIME.
func ValidateFile(filename string, data []byte, policy FilePolicy) FileValidationResult {
	result := FileValidationResult{}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if policy.MaxBytes > 0 && int64(len(data)) > policy.MaxBytes {
		result.Error = "file exceeds maximum size"
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !contains(policy.Extensions, ext) {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	result.DetectedMIME = mime
	if !contains(policy.MIMETypes, mime) {
		result.Error = "MIME type not allowed: " + mime
		return result
	}

	result.Valid = true
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png"
}
