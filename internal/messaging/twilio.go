package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBaseURL = "https://api.twilio.com"

// TwilioClient sends WhatsApp messages through the Twilio REST API and
// downloads inbound media with basic auth.
type TwilioClient struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     *slog.Logger
}

func NewTwilioClient(accountSID, authToken, from string, timeout time.Duration, logger *slog.Logger) *TwilioClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &TwilioClient{
		baseURL:    twilioAPIBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		from:       ensureWhatsAppPrefix(from),
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (t *TwilioClient) Enabled() bool {
	return t.accountSID != "" && t.authToken != "" && t.from != ""
}

func ensureWhatsAppPrefix(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

func (t *TwilioClient) SendText(ctx context.Context, to, body string) error {
	if !t.Enabled() {
		return ErrNotConfigured
	}
	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", ensureWhatsAppPrefix(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("twilio.send_error", "to", to, "error", err)
		return err
	}
	defer closeBody(resp.Body, t.logger, "twilio")

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		t.logger.Error("twilio.send_rejected", "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("twilio status %d", resp.StatusCode)
	}
	t.logger.Info("twilio.sent", "to", ensureWhatsAppPrefix(to))
	return nil
}

// DownloadMedia fetches a Twilio media URL. Twilio redirects media requests,
// so the default redirect-following client matters here.
func (t *TwilioClient) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if t.accountSID != "" && t.authToken != "" {
		req.SetBasicAuth(t.accountSID, t.authToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer closeBody(resp.Body, t.logger, "twilio")
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	t.logger.Info("twilio.media_downloaded", "bytes", len(data), "content_type", resp.Header.Get("Content-Type"))
	return data, resp.Header.Get("Content-Type"), nil
}
