package constants

import "strings"

// AllowedExtensions holds the image extensions accepted from the channel.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// ImageContentTypes maps provider media content types to file extensions.
var ImageContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext names an accepted image format.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// IsAllowedContentType reports whether the media content type is an
// accepted image format. Parameters after a semicolon are ignored.
func IsAllowedContentType(contentType string) bool {
	ct, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	_, ok := ImageContentTypes[strings.TrimSpace(ct)]
	return ok
}
