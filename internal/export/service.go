// Package export renders stored invoices as XLSX, CSV and JSON documents.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/entity"
	"github.com/lectorncf/lector-ncf/internal/repository"
)

// Columns is the fixed export layout shared by all formats.
var Columns = []string{
	"fecha_procesamiento",
	"ncf",
	"rnc",
	"razon_social",
	"fecha_emision",
	"subtotal",
	"itbis",
	"total",
	"imagen_original",
}

// Service is a tiny façade over the invoice repository that produces export
// documents for a date window.
type Service struct {
	repo   repository.InvoiceRepository
	cfg    common.ExportConfig
	logger *slog.Logger
}

func NewService(repo repository.InvoiceRepository, cfg common.ExportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// list normalizes the window to date-only UTC bounds, mirroring how users
// think about "invoices from June".
func (s *Service) list(ctx context.Context, from, to *time.Time) ([]*entity.Invoice, error) {
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	return s.repo.List(ctx, repository.ListFilter{From: fromDate, To: toDate})
}

// ExportXLSX returns a workbook with one row per invoice.
func (s *Service) ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	invs, err := s.list(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Facturas"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, inv := range invs {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		values := invoiceRow(inv)
		for col, v := range values {
			write(col+1, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20) // processing timestamp
	_ = f.SetColWidth(sheet, "B", "B", 14) // ncf
	_ = f.SetColWidth(sheet, "C", "C", 14) // rnc
	_ = f.SetColWidth(sheet, "D", "D", 32) // business name
	_ = f.SetColWidth(sheet, "E", "E", 14) // issue date
	_ = f.SetColWidth(sheet, "F", "H", 12) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 48) // image reference

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(invs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// MarkWindowExported flags the given invoices after a successful export.
func (s *Service) MarkWindowExported(ctx context.Context, invs []*entity.Invoice) error {
	ids := make([]uuid.UUID, len(invs))
	for i, inv := range invs {
		ids[i] = inv.ID
	}
	return s.repo.MarkExported(ctx, ids)
}

// invoiceRow flattens an invoice into the Columns order.
func invoiceRow(inv *entity.Invoice) []string {
	flat := inv.Flat()
	return []string{
		flat["processed_at"],
		flat["ncf"],
		flat["rnc"],
		flat["business_name"],
		flat["issue_date"],
		flat["subtotal"],
		flat["itbis"],
		flat["total"],
		flat["image_ref"],
	}
}
