// Package messaging delivers WhatsApp notifications through Green-API and
// Twilio and downloads inbound media attachments.
package messaging

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("messaging: provider not configured")
	ErrSendFailed    = errors.New("messaging: all providers failed")
)

// defaultSendTimeout applies when no timeout is configured for a client.
const defaultSendTimeout = 30 * time.Second

// Sender delivers a text message to a WhatsApp recipient.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// MediaDownloader fetches an inbound attachment. Twilio media URLs need
// basic auth while Green-API URLs are plain, so the provider name routes
// the download.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, provider, url string) (data []byte, contentType string, err error)
}
