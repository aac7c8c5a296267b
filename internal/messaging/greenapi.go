package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const greenAPIBaseURL = "https://api.green-api.com"

// GreenAPIClient talks to a Green-API WhatsApp instance.
type GreenAPIClient struct {
	baseURL    string
	instanceID string
	token      string
	client     *http.Client
	logger     *slog.Logger
}

// Notification is one queued inbound event from the Green-API instance.
type Notification struct {
	ReceiptID int64           `json:"receiptId"`
	Body      json.RawMessage `json:"body"`
}

func NewGreenAPIClient(instanceID, token string, timeout time.Duration, logger *slog.Logger) *GreenAPIClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &GreenAPIClient{
		baseURL:    greenAPIBaseURL,
		instanceID: instanceID,
		token:      token,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (g *GreenAPIClient) Enabled() bool {
	return g.instanceID != "" && g.token != ""
}

func (g *GreenAPIClient) endpoint(method string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s", g.baseURL, g.instanceID, method, g.token)
}

// ChatID converts "whatsapp:+18095551234" to "18095551234@c.us".
func ChatID(phone string) string {
	clean := strings.TrimSpace(phone)
	clean = strings.TrimPrefix(clean, "whatsapp:")
	clean = strings.ReplaceAll(clean, "+", "")
	clean = strings.TrimSpace(clean)
	if strings.Contains(clean, "@") {
		return clean
	}
	return clean + "@c.us"
}

func (g *GreenAPIClient) SendText(ctx context.Context, to, body string) error {
	if !g.Enabled() {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(map[string]string{
		"chatId":  ChatID(to),
		"message": body,
	})
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("greenapi.send_error", "to", ChatID(to), "error", err)
		return err
	}
	defer closeBody(resp.Body, g.logger, "greenapi")

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		g.logger.Error("greenapi.send_rejected", "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("green-api status %d", resp.StatusCode)
	}

	var result struct {
		IDMessage string `json:"idMessage"`
	}
	_ = json.Unmarshal(raw, &result)
	g.logger.Info("greenapi.sent", "to", ChatID(to), "id_message", result.IDMessage)
	return nil
}

// ReceiveNotification polls the instance queue. It returns nil when the
// queue is empty, and acknowledges the notification before returning it.
func (g *GreenAPIClient) ReceiveNotification(ctx context.Context) (*Notification, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint("receiveNotification"), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body, g.logger, "greenapi")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("green-api status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	if n.ReceiptID != 0 {
		if err := g.deleteNotification(ctx, n.ReceiptID); err != nil {
			g.logger.Warn("greenapi.ack_failed", "receipt_id", n.ReceiptID, "error", err)
		}
	}
	return &n, nil
}

func (g *GreenAPIClient) deleteNotification(ctx context.Context, receiptID int64) error {
	url := fmt.Sprintf("%s/%d", g.endpoint("deleteNotification"), receiptID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body, g.logger, "greenapi")
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("green-api status %d", resp.StatusCode)
	}
	g.logger.Debug("greenapi.ack", "receipt_id", receiptID)
	return nil
}

// DownloadMedia fetches an attachment by the URL Green-API reported.
func (g *GreenAPIClient) DownloadMedia(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer closeBody(resp.Body, g.logger, "greenapi")
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func closeBody(body io.ReadCloser, logger *slog.Logger, component string) {
	if err := body.Close(); err != nil {
		logger.Warn(component+".response_body_close_error", "error", err)
	}
}
