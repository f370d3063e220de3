package constants

import "strings"

// FileTypes holds the allowed file types for uploaded receipt assets.
var FileTypes = []string{"PDF", "IMAGE"}

// AllowedExtensions holds the default allowed file extensions for receipt uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// MimeTypes maps a normalized extension to the MIME type sent to the
// document-understanding API.
var MimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its coarse format tag, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "PDF"
	case "jpg", "jpeg", "png":
		return "IMAGE"
	default:
		return ""
	}
}
