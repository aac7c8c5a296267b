package ocr

import (
	"context"
	"errors"
	"time"
)

// MaxImageSizeBytes is the maximum image size accepted for synchronous
// annotation (20MB, the Vision API inline-content limit).
const MaxImageSizeBytes = 20 * 1024 * 1024

var (
	ErrMissingCredentials = errors.New("ocr: no credentials configured")
	ErrEmptyImage         = errors.New("ocr: empty image payload")
	ErrImageTooLarge      = errors.New("ocr: image exceeds size limit")
	ErrNoText             = errors.New("ocr: no text detected")
)

type Config struct {
	CredentialsFile string // service account key path; takes priority over JSON
	CredentialsJSON string // inline service account key
	LanguageHint    string // default "es"
	MaxImageSizeMB  int    // accepted payload cap; 0 means the Vision inline limit
}

type Result struct {
	Text       string
	Confidence *float32 // nil when the engine reported no word scores
	Method     string   // "text" | "document-text"
	Duration   time.Duration
}

// TextExtractor turns an image payload into raw text.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (Result, error)
	Close() error
}

// imageSizeLimit converts the configured MB cap into bytes, clamped to the
// Vision inline-content ceiling.
func imageSizeLimit(maxMB int) int {
	limit := maxMB * 1024 * 1024
	if limit <= 0 || limit > MaxImageSizeBytes {
		return MaxImageSizeBytes
	}
	return limit
}
