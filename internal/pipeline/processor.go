// Package pipeline runs an inbound invoice image through download, OCR,
// parsing and persistence, then reports the outcome to the sender.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/entity"
	"github.com/lectorncf/lector-ncf/internal/messaging"
	"github.com/lectorncf/lector-ncf/internal/ocr"
	"github.com/lectorncf/lector-ncf/internal/parser"
	"github.com/lectorncf/lector-ncf/internal/repository"
)

// Notifier is the outbound surface the processor needs.
type Notifier interface {
	SendConfirmation(ctx context.Context, to string) error
	SendSuccess(ctx context.Context, to, ncf string, total *float64) error
	SendPartial(ctx context.Context, to string, warnings []string) error
	SendError(ctx context.Context, to, detail string) error
}

type Processor struct {
	downloader messaging.MediaDownloader
	extractor  ocr.TextExtractor
	parser     *parser.Parser
	repo       repository.InvoiceRepository
	notifier   Notifier
	logger     *slog.Logger
}

func NewProcessor(
	downloader messaging.MediaDownloader,
	extractor ocr.TextExtractor,
	p *parser.Parser,
	repo repository.InvoiceRepository,
	notifier Notifier,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		downloader: downloader,
		extractor:  extractor,
		parser:     p,
		repo:       repo,
		notifier:   notifier,
		logger:     logger,
	}
}

// ProcessImage handles one inbound WhatsApp message that carries an image.
// Failures are reported back to the sender; the returned result mirrors what
// was sent.
func (p *Processor) ProcessImage(ctx context.Context, msg entity.InboundMessage) entity.ProcessingResult {
	start := time.Now()
	log := p.logger.With("from", msg.From, "message_id", msg.MessageID)

	if !constants.IsAllowedContentType(msg.MediaContentType) {
		log.Warn("pipeline.unsupported_media", "content_type", msg.MediaContentType)
		_ = p.notifier.SendError(ctx, msg.From, "Formato de imagen no soportado")
		return entity.ProcessingResult{Error: "unsupported media type"}
	}

	_ = p.notifier.SendConfirmation(ctx, msg.From)

	inv := entity.NewInvoice()
	inv.Metadata.ImageRef = msg.MediaURL
	inv.Metadata.Channel = msg.Provider
	if err := p.repo.Save(ctx, inv); err != nil {
		log.Error("pipeline.save_failed", "invoice_id", inv.ID, "error", err)
		_ = p.notifier.SendError(ctx, msg.From, "")
		return entity.ProcessingResult{Error: "persistence failed"}
	}

	image, _, err := p.downloader.DownloadMedia(ctx, msg.Provider, msg.MediaURL)
	if err != nil {
		log.Error("pipeline.download_failed", "error", err)
		p.markFailed(ctx, inv)
		_ = p.notifier.SendError(ctx, msg.From, "")
		return entity.ProcessingResult{Error: "media download failed"}
	}

	res, err := p.extractor.Extract(ctx, image)
	if err != nil {
		log.Error("pipeline.ocr_failed", "error", err)
		p.markFailed(ctx, inv)
		_ = p.notifier.SendError(ctx, msg.From, "")
		return entity.ProcessingResult{Error: "ocr failed"}
	}

	inv.Status = constants.StatusOCROK
	if err := p.repo.Save(ctx, inv); err != nil {
		log.Warn("pipeline.status_save_failed", "invoice_id", inv.ID, "status", inv.Status, "error", err)
	}

	confidence := res.Confidence
	if confidence == nil {
		h := ocr.HeuristicConfidence(res.Text)
		confidence = &h
	}
	inv.Metadata.OCRConfidence = confidence

	p.parser.ParseInto(inv, res.Text)

	if err := p.repo.Save(ctx, inv); err != nil {
		log.Error("pipeline.save_failed", "invoice_id", inv.ID, "error", err)
		_ = p.notifier.SendError(ctx, msg.From, "")
		return entity.ProcessingResult{Invoice: inv, Error: "persistence failed"}
	}

	warnings := p.parser.Warnings(inv)
	switch {
	case len(warnings) == 0 && inv.NCF != nil:
		_ = p.notifier.SendSuccess(ctx, msg.From, *inv.NCF, inv.Amounts.Total)
	default:
		_ = p.notifier.SendPartial(ctx, msg.From, warnings)
	}

	log.Info("pipeline.processed",
		"invoice_id", inv.ID,
		"warnings", len(warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.ProcessingResult{Success: true, Invoice: inv, Warnings: warnings}
}

// markFailed records a terminal failure on the already persisted record.
func (p *Processor) markFailed(ctx context.Context, inv *entity.Invoice) {
	inv.Status = constants.StatusFailed
	if err := p.repo.Save(ctx, inv); err != nil {
		p.logger.Error("pipeline.status_save_failed", "invoice_id", inv.ID, "status", inv.Status, "error", err)
	}
}

// ProcessText runs already-extracted text through parsing and persistence.
// The CLI uses this on local files.
func (p *Processor) ProcessText(ctx context.Context, rawText, imageRef string) (*entity.Invoice, []string, error) {
	inv := p.parser.Parse(rawText, nil, imageRef)
	inv.Metadata.Channel = constants.ChannelCLI
	if p.repo != nil {
		if err := p.repo.Save(ctx, inv); err != nil {
			return nil, nil, err
		}
	}
	return inv, p.parser.Warnings(inv), nil
}
