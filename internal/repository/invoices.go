package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

// ListFilter narrows a listing by processing date and export state.
type ListFilter struct {
	From           *time.Time
	To             *time.Time
	OnlyUnexported bool
}

type InvoiceRepository interface {
	Save(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Invoice, error)
	MarkReviewed(ctx context.Context, id uuid.UUID) error
	MarkExported(ctx context.Context, ids []uuid.UUID) error
}

const invoiceColumns = `id, processed_at, status, ncf, rnc, business_name, issue_date,
subtotal, itbis, total, currency_code, image_ref, ocr_confidence,
channel, processed_by, raw_text, reviewed, exported`
