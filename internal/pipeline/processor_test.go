package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/entity"
	"github.com/lectorncf/lector-ncf/internal/ocr"
	"github.com/lectorncf/lector-ncf/internal/parser"
	"github.com/lectorncf/lector-ncf/internal/repository"
)

type stubDownloader struct {
	data []byte
	err  error
}

func (s *stubDownloader) DownloadMedia(context.Context, string, string) ([]byte, string, error) {
	return s.data, "image/jpeg", s.err
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(context.Context, []byte) (ocr.Result, error) {
	if s.err != nil {
		return ocr.Result{}, s.err
	}
	return ocr.Result{Text: s.text, Method: "text"}, nil
}

func (s *stubExtractor) Close() error { return nil }

type stubRepository struct {
	saved    []*entity.Invoice
	statuses []constants.ProcessStatus
	err      error
}

func (s *stubRepository) Save(_ context.Context, inv *entity.Invoice) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, inv)
	s.statuses = append(s.statuses, inv.Status)
	return nil
}
func (s *stubRepository) GetByID(context.Context, uuid.UUID) (*entity.Invoice, error) {
	return nil, common.ErrNotFound
}
func (s *stubRepository) List(context.Context, repository.ListFilter) ([]*entity.Invoice, error) {
	return nil, nil
}
func (s *stubRepository) MarkReviewed(context.Context, uuid.UUID) error   { return nil }
func (s *stubRepository) MarkExported(context.Context, []uuid.UUID) error { return nil }

type sentMessage struct {
	kind string
	body string
}

type stubNotifier struct {
	sent []sentMessage
}

func (s *stubNotifier) SendConfirmation(_ context.Context, to string) error {
	s.sent = append(s.sent, sentMessage{kind: "confirmation"})
	return nil
}
func (s *stubNotifier) SendSuccess(_ context.Context, _, ncf string, _ *float64) error {
	s.sent = append(s.sent, sentMessage{kind: "success", body: ncf})
	return nil
}
func (s *stubNotifier) SendPartial(_ context.Context, _ string, warnings []string) error {
	body := ""
	if len(warnings) > 0 {
		body = warnings[0]
	}
	s.sent = append(s.sent, sentMessage{kind: "partial", body: body})
	return nil
}
func (s *stubNotifier) SendError(_ context.Context, _, detail string) error {
	s.sent = append(s.sent, sentMessage{kind: "error", body: detail})
	return nil
}

const completeInvoiceText = "COMERCIAL EJEMPLO SRL\n" +
	"RNC: 123-456-789\n" +
	"NCF: B0100000123\n" +
	"Fecha: 10/02/2026\n" +
	"Subtotal: RD$1,271.19\n" +
	"ITBIS (18%): RD$228.81\n" +
	"Total: RD$1,500.00\n"

func imageMessage() entity.InboundMessage {
	return entity.InboundMessage{
		From:             "whatsapp:+18095551234",
		MessageID:        "SM1",
		NumMedia:         1,
		MediaURL:         "https://media.example/1",
		MediaContentType: "image/jpeg",
		Provider:         "twilio",
	}
}

func newTestProcessor(d *stubDownloader, e *stubExtractor, r *stubRepository, n *stubNotifier) *Processor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessor(d, e, parser.New(parser.DefaultConfig(), logger), r, n, logger)
}

func TestProcessImageSuccess(t *testing.T) {
	repo := &stubRepository{}
	notifier := &stubNotifier{}
	p := newTestProcessor(
		&stubDownloader{data: []byte("jpeg")},
		&stubExtractor{text: completeInvoiceText},
		repo, notifier,
	)

	res := p.ProcessImage(context.Background(), imageMessage())
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if len(repo.saved) == 0 {
		t.Fatal("nothing saved")
	}
	if repo.saved[0].Metadata.Channel != "twilio" {
		t.Errorf("channel = %q", repo.saved[0].Metadata.Channel)
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("sent = %+v", notifier.sent)
	}
	if notifier.sent[0].kind != "confirmation" || notifier.sent[1].kind != "success" {
		t.Errorf("sent = %+v", notifier.sent)
	}
	if notifier.sent[1].body != "B0100000123" {
		t.Errorf("success ncf = %q", notifier.sent[1].body)
	}
}

func TestProcessImagePartial(t *testing.T) {
	repo := &stubRepository{}
	notifier := &stubNotifier{}
	p := newTestProcessor(
		&stubDownloader{data: []byte("jpeg")},
		&stubExtractor{text: "COLMADO DONA ANA\nTotal: 840.50\n"},
		repo, notifier,
	)

	res := p.ProcessImage(context.Background(), imageMessage())
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected warnings")
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.kind != "partial" {
		t.Errorf("last message = %+v", last)
	}
	// The record persists even when fields are missing.
	if len(repo.saved) == 0 {
		t.Fatal("nothing saved")
	}
	if got := repo.statuses[len(repo.statuses)-1]; got != constants.StatusParsed {
		t.Errorf("final status = %q", got)
	}
}

func TestProcessImageRejectsUnsupportedMedia(t *testing.T) {
	repo := &stubRepository{}
	notifier := &stubNotifier{}
	p := newTestProcessor(&stubDownloader{}, &stubExtractor{}, repo, notifier)

	msg := imageMessage()
	msg.MediaContentType = "application/pdf"
	res := p.ProcessImage(context.Background(), msg)
	if res.Success {
		t.Fatal("expected failure")
	}
	if len(repo.saved) != 0 {
		t.Errorf("saved = %d", len(repo.saved))
	}
	if len(notifier.sent) != 1 || notifier.sent[0].kind != "error" {
		t.Errorf("sent = %+v", notifier.sent)
	}
}

func TestProcessImageStatusTransitions(t *testing.T) {
	repo := &stubRepository{}
	p := newTestProcessor(
		&stubDownloader{data: []byte("jpeg")},
		&stubExtractor{text: completeInvoiceText},
		repo, &stubNotifier{},
	)

	p.ProcessImage(context.Background(), imageMessage())

	want := []constants.ProcessStatus{
		constants.StatusReceived,
		constants.StatusOCROK,
		constants.StatusParsed,
	}
	if len(repo.statuses) != len(want) {
		t.Fatalf("statuses = %v", repo.statuses)
	}
	for i, status := range want {
		if repo.statuses[i] != status {
			t.Errorf("statuses[%d] = %q, want %q", i, repo.statuses[i], status)
		}
	}
	// Every save targets the same record.
	for _, inv := range repo.saved[1:] {
		if inv.ID != repo.saved[0].ID {
			t.Errorf("save split across records: %v vs %v", inv.ID, repo.saved[0].ID)
		}
	}
}

func TestProcessImageDownloadFailure(t *testing.T) {
	repo := &stubRepository{}
	notifier := &stubNotifier{}
	p := newTestProcessor(
		&stubDownloader{err: errors.New("boom")},
		&stubExtractor{},
		repo, notifier,
	)

	res := p.ProcessImage(context.Background(), imageMessage())
	if res.Success {
		t.Fatal("expected failure")
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.kind != "error" {
		t.Errorf("last message = %+v", last)
	}
	if got := repo.statuses[len(repo.statuses)-1]; got != constants.StatusFailed {
		t.Errorf("final status = %q", got)
	}
}

func TestProcessImageOCRFailure(t *testing.T) {
	repo := &stubRepository{}
	notifier := &stubNotifier{}
	p := newTestProcessor(
		&stubDownloader{data: []byte("jpeg")},
		&stubExtractor{err: ocr.ErrNoText},
		repo, notifier,
	)

	res := p.ProcessImage(context.Background(), imageMessage())
	if res.Success {
		t.Fatal("expected failure")
	}
	if got := repo.statuses[len(repo.statuses)-1]; got != constants.StatusFailed {
		t.Errorf("final status = %q", got)
	}
}

func TestProcessImagePersistFailure(t *testing.T) {
	notifier := &stubNotifier{}
	p := newTestProcessor(
		&stubDownloader{data: []byte("jpeg")},
		&stubExtractor{text: completeInvoiceText},
		&stubRepository{err: common.ErrDatabase}, notifier,
	)

	res := p.ProcessImage(context.Background(), imageMessage())
	if res.Success {
		t.Fatal("expected failure")
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.kind != "error" {
		t.Errorf("last message = %+v", last)
	}
}

func TestProcessText(t *testing.T) {
	repo := &stubRepository{}
	p := newTestProcessor(&stubDownloader{}, &stubExtractor{}, repo, &stubNotifier{})

	inv, warnings, err := p.ProcessText(context.Background(), completeInvoiceText, "local:factura.jpg")
	if err != nil {
		t.Fatalf("ProcessText: %v", err)
	}
	if inv.NCF == nil || *inv.NCF != "B0100000123" {
		t.Errorf("NCF = %v", inv.NCF)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if inv.Metadata.Channel != "cli" {
		t.Errorf("channel = %q", inv.Metadata.Channel)
	}
	if inv.Status != constants.StatusParsed {
		t.Errorf("status = %q", inv.Status)
	}
	if len(repo.saved) != 1 {
		t.Errorf("saved = %d", len(repo.saved))
	}
}
