package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportCSV renders the window as CSV using the configured delimiter.
func (s *Service) ExportCSV(ctx context.Context, from, to *time.Time) ([]byte, error) {
	invs, err := s.list(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if s.cfg.CSVDelimiter != "" {
		w.Comma = rune(s.cfg.CSVDelimiter[0])
	}

	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, inv := range invs {
		if err := w.Write(invoiceRow(inv)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("export.csv.ok", "rows", len(invs))
	return buf.Bytes(), nil
}

// ExportJSON renders the window as a JSON array of invoice records.
func (s *Service) ExportJSON(ctx context.Context, from, to *time.Time) ([]byte, error) {
	invs, err := s.list(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	data, err := json.MarshalIndent(invs, "", "  ")
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.json.ok", "rows", len(invs))
	return data, nil
}

// WriteFile stores an export document under the configured directory with a
// timestamped name like "facturas_20260831_143000.xlsx".
func (s *Service) WriteFile(data []byte, format string) (string, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	name := fmt.Sprintf("facturas_%s.%s", time.Now().Format("20060102_150405"), format)
	path := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	s.logger.Info("export.file.written", "path", path, "bytes", len(data))
	return path, nil
}
