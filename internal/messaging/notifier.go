package messaging

import (
	"context"
	"log/slog"

	"github.com/lectorncf/lector-ncf/internal/common"
)

// Notifier routes outbound messages across the configured providers.
// In dual mode Green-API goes first and Twilio covers its failures.
type Notifier struct {
	mode   string
	green  *GreenAPIClient
	twilio *TwilioClient
	logger *slog.Logger
}

func NewNotifier(cfg common.MessagingConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		mode:   cfg.Mode,
		green:  NewGreenAPIClient(cfg.GreenAPIInstanceID, cfg.GreenAPIToken, cfg.SendTimeout, logger),
		twilio: NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SendTimeout, logger),
		logger: logger,
	}
}

func (n *Notifier) SendText(ctx context.Context, to, body string) error {
	if n.mode == "greenapi" || n.mode == "dual" {
		if n.green.Enabled() {
			if err := n.green.SendText(ctx, to, body); err == nil {
				return nil
			} else if n.mode == "greenapi" {
				return err
			} else {
				n.logger.Warn("notifier.fallback", "from", "greenapi", "to_provider", "twilio", "error", err)
			}
		} else if n.mode == "greenapi" {
			return ErrNotConfigured
		}
	}
	if n.mode == "twilio" || n.mode == "dual" {
		if n.twilio.Enabled() {
			return n.twilio.SendText(ctx, to, body)
		}
		if n.mode == "twilio" {
			return ErrNotConfigured
		}
	}
	return ErrSendFailed
}

func (n *Notifier) SendConfirmation(ctx context.Context, to string) error {
	return n.SendText(ctx, to, ConfirmationMessage)
}

func (n *Notifier) SendSuccess(ctx context.Context, to, ncf string, total *float64) error {
	return n.SendText(ctx, to, SuccessMessage(ncf, total))
}

func (n *Notifier) SendPartial(ctx context.Context, to string, warnings []string) error {
	return n.SendText(ctx, to, PartialMessage(warnings))
}

func (n *Notifier) SendError(ctx context.Context, to, detail string) error {
	return n.SendText(ctx, to, ErrorMessage(detail))
}

// DownloadMedia routes an attachment download to the provider that
// delivered the message.
func (n *Notifier) DownloadMedia(ctx context.Context, provider, url string) ([]byte, string, error) {
	if provider == "twilio" {
		return n.twilio.DownloadMedia(ctx, url)
	}
	return n.green.DownloadMedia(ctx, url)
}
