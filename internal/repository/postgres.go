package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/entity"
)

// PostgresSchema creates the invoices table. Applied at startup.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS invoices (
    id              UUID PRIMARY KEY,
    processed_at    TIMESTAMPTZ NOT NULL,
    status          TEXT NOT NULL DEFAULT 'RECEIVED',
    ncf             TEXT,
    rnc             TEXT,
    business_name   TEXT,
    issue_date      TEXT,
    subtotal        DOUBLE PRECISION,
    itbis           DOUBLE PRECISION,
    total           DOUBLE PRECISION,
    currency_code   TEXT NOT NULL DEFAULT 'DOP',
    image_ref       TEXT NOT NULL DEFAULT '',
    ocr_confidence  REAL,
    channel         TEXT NOT NULL DEFAULT 'whatsapp',
    processed_by    TEXT NOT NULL DEFAULT '',
    raw_text        TEXT NOT NULL DEFAULT '',
    reviewed        BOOLEAN NOT NULL DEFAULT FALSE,
    exported        BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS invoices_processed_at_idx ON invoices (processed_at);
CREATE INDEX IF NOT EXISTS invoices_ncf_idx ON invoices (ncf);
`

type postgresInvoices struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresInvoices(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (InvoiceRepository, error) {
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &postgresInvoices{pool: pool, logger: logger}, nil
}

func (r *postgresInvoices) Save(ctx context.Context, inv *entity.Invoice) error {
	const q = `
INSERT INTO invoices (` + invoiceColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status,
    ncf = EXCLUDED.ncf,
    rnc = EXCLUDED.rnc,
    business_name = EXCLUDED.business_name,
    issue_date = EXCLUDED.issue_date,
    subtotal = EXCLUDED.subtotal,
    itbis = EXCLUDED.itbis,
    total = EXCLUDED.total,
    ocr_confidence = EXCLUDED.ocr_confidence,
    raw_text = EXCLUDED.raw_text`

	_, err := r.pool.Exec(ctx, q,
		inv.ID, inv.ProcessedAt, string(inv.Status), inv.NCF, inv.RNC, inv.BusinessName, inv.IssueDate,
		inv.Amounts.Subtotal, inv.Amounts.Tax, inv.Amounts.Total, inv.Amounts.Currency,
		inv.Metadata.ImageRef, inv.Metadata.OCRConfidence,
		inv.Metadata.Channel, inv.Metadata.ProcessedBy, inv.RawText,
		inv.Reviewed, inv.Exported,
	)
	if err != nil {
		r.logger.Error("failed to save invoice", "invoice_id", inv.ID, "error", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	r.logger.Debug("invoice saved", "invoice_id", inv.ID)
	return nil
}

func (r *postgresInvoices) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	row := r.pool.QueryRow(ctx, q, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return inv, nil
}

func (r *postgresInvoices) List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any
	if filter.From != nil {
		args = append(args, *filter.From)
		q += fmt.Sprintf(" AND processed_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		q += fmt.Sprintf(" AND processed_at <= $%d", len(args))
	}
	if filter.OnlyUnexported {
		q += " AND exported = FALSE"
	}
	q += " ORDER BY processed_at"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()

	var result []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

func (r *postgresInvoices) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET reviewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *postgresInvoices) MarkExported(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE invoices SET exported = TRUE WHERE id = ANY($1)`, ids)
	if err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.ProcessedAt, &status, &inv.NCF, &inv.RNC, &inv.BusinessName, &inv.IssueDate,
		&inv.Amounts.Subtotal, &inv.Amounts.Tax, &inv.Amounts.Total, &inv.Amounts.Currency,
		&inv.Metadata.ImageRef, &inv.Metadata.OCRConfidence,
		&inv.Metadata.Channel, &inv.Metadata.ProcessedBy, &inv.RawText,
		&inv.Reviewed, &inv.Exported,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = constants.ProcessStatus(status)
	return &inv, nil
}
