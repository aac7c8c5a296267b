package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

type stubQueue struct {
	enqueued []entity.InboundMessage
}

func (s *stubQueue) Enqueue(_ context.Context, msg entity.InboundMessage) error {
	s.enqueued = append(s.enqueued, msg)
	return nil
}

type stubSender struct {
	sent []string
}

func (s *stubSender) SendText(_ context.Context, _, body string) error {
	s.sent = append(s.sent, body)
	return nil
}

type stubExporter struct {
	data []byte
	err  error
	from *time.Time
}

func (s *stubExporter) ExportXLSX(_ context.Context, from, _ *time.Time) ([]byte, error) {
	s.from = from
	return s.data, s.err
}
func (s *stubExporter) ExportCSV(_ context.Context, from, _ *time.Time) ([]byte, error) {
	s.from = from
	return s.data, s.err
}
func (s *stubExporter) ExportJSON(_ context.Context, from, _ *time.Time) ([]byte, error) {
	s.from = from
	return s.data, s.err
}

type stubHealth struct {
	err error
}

func (s *stubHealth) Probe(context.Context) error { return s.err }

func newTestRouter(deps RouterDependencies) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(logger, deps)
}

func TestRootStatus(t *testing.T) {
	router := newTestRouter(RouterDependencies{Queue: &stubQueue{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if payload["service"] != "LECTOR-NCF" {
		t.Errorf("payload = %v", payload)
	}
}

func TestHealthDegraded(t *testing.T) {
	router := newTestRouter(RouterDependencies{Health: &stubHealth{err: errors.New("db down")}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func twilioForm(numMedia string) *strings.Reader {
	form := url.Values{}
	form.Set("From", "whatsapp:+18095551234")
	form.Set("To", "whatsapp:+14155238886")
	form.Set("MessageSid", "SM1")
	form.Set("NumMedia", numMedia)
	if numMedia != "0" {
		form.Set("MediaUrl0", "https://api.twilio.com/media/ME1")
		form.Set("MediaContentType0", "image/jpeg")
	}
	return strings.NewReader(form.Encode())
}

func TestTwilioWebhookEnqueuesImage(t *testing.T) {
	queue := &stubQueue{}
	router := newTestRouter(RouterDependencies{Queue: queue, Sender: &stubSender{}})

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", twilioForm("1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("enqueued = %d", len(queue.enqueued))
	}
	msg := queue.enqueued[0]
	if msg.Provider != "twilio" || msg.MediaURL != "https://api.twilio.com/media/ME1" || msg.MessageID != "SM1" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestTwilioWebhookTextOnlyAsksForPhoto(t *testing.T) {
	queue := &stubQueue{}
	sender := &stubSender{}
	router := newTestRouter(RouterDependencies{Queue: queue, Sender: sender})

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", twilioForm("0"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("enqueued = %d", len(queue.enqueued))
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0], "foto") {
		t.Errorf("sent = %v", sender.sent)
	}
}

const greenAPIImagePayload = `{
	"typeWebhook": "incomingMessageReceived",
	"idMessage": "BAE5",
	"senderData": {"chatId": "18095551234@c.us", "sender": "18095551234@c.us"},
	"messageData": {
		"typeMessage": "imageMessage",
		"fileMessageData": {
			"downloadUrl": "https://api.green-api.com/file/1",
			"mimeType": "image/jpeg",
			"caption": ""
		}
	}
}`

func TestGreenAPIWebhookEnqueuesImage(t *testing.T) {
	queue := &stubQueue{}
	router := newTestRouter(RouterDependencies{Queue: queue, Sender: &stubSender{}})

	req := httptest.NewRequest(http.MethodPost, "/webhook/greenapi", strings.NewReader(greenAPIImagePayload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("enqueued = %d", len(queue.enqueued))
	}
	msg := queue.enqueued[0]
	if msg.Provider != "greenapi" || msg.From != "18095551234@c.us" || msg.NumMedia != 1 {
		t.Errorf("msg = %+v", msg)
	}
}

func TestGreenAPIWebhookIgnoresOtherEvents(t *testing.T) {
	queue := &stubQueue{}
	router := newTestRouter(RouterDependencies{Queue: queue, Sender: &stubSender{}})

	payload := `{"typeWebhook": "outgoingMessageStatus"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/greenapi", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("enqueued = %d", len(queue.enqueued))
	}
}

func TestGreenAPIWebhookInvalidPayloadStill200(t *testing.T) {
	queue := &stubQueue{}
	router := newTestRouter(RouterDependencies{Queue: queue})

	req := httptest.NewRequest(http.MethodPost, "/webhook/greenapi", strings.NewReader(`{"unexpected": 1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("enqueued = %d", len(queue.enqueued))
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	exporter := &stubExporter{data: []byte("ncf,total\n")}
	router := newTestRouter(RouterDependencies{Export: exporter})

	req := httptest.NewRequest(http.MethodGet, "/exports/invoices.csv?from=2026-06-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("content type = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".csv") {
		t.Errorf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if exporter.from == nil || !exporter.from.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", exporter.from)
	}
}

func TestExportRejectsBadDate(t *testing.T) {
	router := newTestRouter(RouterDependencies{Export: &stubExporter{}})

	req := httptest.NewRequest(http.MethodGet, "/exports/invoices.xlsx?from=junio", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWebhookRejectsGet(t *testing.T) {
	router := newTestRouter(RouterDependencies{Queue: &stubQueue{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/whatsapp", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
