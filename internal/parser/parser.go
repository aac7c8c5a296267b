// Package parser turns raw OCR text from Dominican fiscal invoices into
// structured records. All extractors are stateless: configuration is fixed at
// construction and every call operates on its own copies of the input, so a
// single Parser is safe for concurrent use.
package parser

import (
	"fmt"
	"log/slog"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/entity"
	"github.com/lectorncf/lector-ncf/internal/fiscal"
)

// Config holds the immutable matcher configuration. Zero fields fall back to
// the defaults used by Dominican invoices.
type Config struct {
	// Keyword sets per amount field, in priority order.
	TotalKeywords    []string
	TaxKeywords      []string
	SubtotalKeywords []string

	// Label phrases that introduce the business name.
	BusinessLabels []string

	// Currency markers stripped before amount parsing.
	CurrencyMarkers []string

	// Absolute tolerance for the subtotal+itbis=total coherence check.
	Tolerance float64
}

// DefaultConfig returns the matcher configuration for DR fiscal invoices.
func DefaultConfig() Config {
	return Config{
		TotalKeywords:    []string{"total", "monto total", "total general"},
		TaxKeywords:      []string{"itbis", "itebis", "impuesto", "tax"},
		SubtotalKeywords: []string{"subtotal", "sub total", "sub-total", "valor"},
		BusinessLabels: []string{
			"razon social", "razón social", "nombre", "empresa",
			"contribuyente", "emisor", "proveedor",
		},
		CurrencyMarkers: []string{"RD$", "DOP", "$"},
		Tolerance:       fiscal.DefaultTolerance,
	}
}

// Parser assembles invoice records from OCR text.
type Parser struct {
	cfg    Config
	logger *slog.Logger

	totalMatchers    []keywordMatcher
	taxMatchers      []keywordMatcher
	subtotalMatchers []keywordMatcher
	currencyStripper *currencyStripper
}

// New builds a Parser. Matcher patterns are compiled once here.
func New(cfg Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if len(cfg.TotalKeywords) == 0 {
		cfg.TotalKeywords = def.TotalKeywords
	}
	if len(cfg.TaxKeywords) == 0 {
		cfg.TaxKeywords = def.TaxKeywords
	}
	if len(cfg.SubtotalKeywords) == 0 {
		cfg.SubtotalKeywords = def.SubtotalKeywords
	}
	if len(cfg.BusinessLabels) == 0 {
		cfg.BusinessLabels = def.BusinessLabels
	}
	if len(cfg.CurrencyMarkers) == 0 {
		cfg.CurrencyMarkers = def.CurrencyMarkers
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}

	return &Parser{
		cfg:              cfg,
		logger:           logger,
		totalMatchers:    compileKeywordMatchers(cfg.TotalKeywords),
		taxMatchers:      compileKeywordMatchers(cfg.TaxKeywords),
		subtotalMatchers: compileKeywordMatchers(cfg.SubtotalKeywords),
		currencyStripper: newCurrencyStripper(cfg.CurrencyMarkers),
	}
}

// Parse runs every field extractor over rawText and assembles the record.
// It never fails: degenerate input yields a valid record with absent fields.
func (p *Parser) Parse(rawText string, confidence *float32, imageRef string) *entity.Invoice {
	inv := entity.NewInvoice()
	inv.Metadata.ImageRef = imageRef
	inv.Metadata.OCRConfidence = confidence
	p.ParseInto(inv, rawText)
	return inv
}

// ParseInto fills an existing record from rawText and moves it to
// StatusParsed. The pipeline uses this so status transitions land on the
// record created at receipt.
func (p *Parser) ParseInto(inv *entity.Invoice, rawText string) {
	inv.RawText = rawText

	inv.NCF = p.extractNCF(rawText)
	inv.RNC = p.extractRNC(rawText)
	inv.BusinessName = p.extractBusinessName(rawText)
	inv.IssueDate = p.extractDate(rawText)

	amounts := p.extractAmounts(rawText)
	amounts = Reconcile(amounts)
	inv.Amounts = amounts

	inv.Status = constants.StatusParsed
	p.logSummary(inv)
}

// Warnings derives the human-facing warnings for an assembled record. The
// parser only exposes absence; deciding what is warning-worthy lives here,
// with the caller.
func (p *Parser) Warnings(inv *entity.Invoice) []string {
	var warnings []string
	if inv.NCF == nil {
		warnings = append(warnings, "NCF no encontrado")
	}
	if inv.RNC == nil {
		warnings = append(warnings, "RNC no encontrado")
	}
	if inv.Amounts.Total == nil {
		warnings = append(warnings, "Monto total no encontrado")
	}
	a := inv.Amounts
	if a.Subtotal != nil && a.Tax != nil && a.Total != nil &&
		!fiscal.CoherentAmounts(*a.Subtotal, *a.Tax, *a.Total, p.cfg.Tolerance) {
		warnings = append(warnings,
			fmt.Sprintf("Montos incoherentes: %.2f + %.2f ≠ %.2f", *a.Subtotal, *a.Tax, *a.Total))
	}
	return warnings
}

func (p *Parser) logSummary(inv *entity.Invoice) {
	p.logger.Info("parser.extracted",
		"id", inv.ID,
		"ncf_found", inv.NCF != nil,
		"rnc_found", inv.RNC != nil,
		"business_found", inv.BusinessName != nil,
		"date_found", inv.IssueDate != nil,
		"subtotal_found", inv.Amounts.Subtotal != nil,
		"itbis_found", inv.Amounts.Tax != nil,
		"total_found", inv.Amounts.Total != nil,
	)
}
