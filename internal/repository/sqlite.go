package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/entity"
)

// sqliteSchema mirrors the Postgres layout. Timestamps and UUIDs are stored
// as RFC3339 / canonical text so range filters order lexically.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS invoices (
    id              TEXT PRIMARY KEY,
    processed_at    TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'RECEIVED',
    ncf             TEXT,
    rnc             TEXT,
    business_name   TEXT,
    issue_date      TEXT,
    subtotal        REAL,
    itbis           REAL,
    total           REAL,
    currency_code   TEXT NOT NULL DEFAULT 'DOP',
    image_ref       TEXT NOT NULL DEFAULT '',
    ocr_confidence  REAL,
    channel         TEXT NOT NULL DEFAULT 'whatsapp',
    processed_by    TEXT NOT NULL DEFAULT '',
    raw_text        TEXT NOT NULL DEFAULT '',
    reviewed        INTEGER NOT NULL DEFAULT 0,
    exported        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS invoices_processed_at_idx ON invoices (processed_at);
`

type sqliteInvoices struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and creates if needed) the local invoice store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (InvoiceRepository, *sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &sqliteInvoices{db: db, logger: logger}, db, nil
}

func (r *sqliteInvoices) Save(ctx context.Context, inv *entity.Invoice) error {
	const q = `
INSERT INTO invoices (` + invoiceColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    status = excluded.status,
    ncf = excluded.ncf,
    rnc = excluded.rnc,
    business_name = excluded.business_name,
    issue_date = excluded.issue_date,
    subtotal = excluded.subtotal,
    itbis = excluded.itbis,
    total = excluded.total,
    ocr_confidence = excluded.ocr_confidence,
    raw_text = excluded.raw_text`

	_, err := r.db.ExecContext(ctx, q,
		inv.ID.String(), inv.ProcessedAt.UTC().Format(time.RFC3339), string(inv.Status), inv.NCF, inv.RNC,
		inv.BusinessName, inv.IssueDate,
		inv.Amounts.Subtotal, inv.Amounts.Tax, inv.Amounts.Total, inv.Amounts.Currency,
		inv.Metadata.ImageRef, inv.Metadata.OCRConfidence,
		inv.Metadata.Channel, inv.Metadata.ProcessedBy, inv.RawText,
		inv.Reviewed, inv.Exported,
	)
	if err != nil {
		r.logger.Error("failed to save invoice", "invoice_id", inv.ID, "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}

func (r *sqliteInvoices) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	inv, err := scanSQLiteInvoice(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return inv, nil
}

func (r *sqliteInvoices) List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any
	if filter.From != nil {
		q += " AND processed_at >= ?"
		args = append(args, filter.From.UTC().Format(time.RFC3339))
	}
	if filter.To != nil {
		q += " AND processed_at <= ?"
		args = append(args, filter.To.UTC().Format(time.RFC3339))
	}
	if filter.OnlyUnexported {
		q += " AND exported = 0"
	}
	q += " ORDER BY processed_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() { _ = rows.Close() }()

	var result []*entity.Invoice
	for rows.Next() {
		inv, err := scanSQLiteInvoice(rows)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

func (r *sqliteInvoices) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET reviewed = 1 WHERE id = ?`, id.String())
	if err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqliteInvoices) MarkExported(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx, `UPDATE invoices SET exported = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}

func scanSQLiteInvoice(row rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var id, processedAt, status string
	err := row.Scan(
		&id, &processedAt, &status, &inv.NCF, &inv.RNC, &inv.BusinessName, &inv.IssueDate,
		&inv.Amounts.Subtotal, &inv.Amounts.Tax, &inv.Amounts.Total, &inv.Amounts.Currency,
		&inv.Metadata.ImageRef, &inv.Metadata.OCRConfidence,
		&inv.Metadata.Channel, &inv.Metadata.ProcessedBy, &inv.RawText,
		&inv.Reviewed, &inv.Exported,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = constants.ProcessStatus(status)
	if inv.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt invoice id %q: %w", id, err)
	}
	if inv.ProcessedAt, err = time.Parse(time.RFC3339, processedAt); err != nil {
		return nil, fmt.Errorf("corrupt processed_at %q: %w", processedAt, err)
	}
	return &inv, nil
}
