package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/lectorncf/lector-ncf/constants"
)

// InvoiceAmounts holds the monetary fields of a fiscal invoice.
// Absent amounts are nil; values are in the local currency.
type InvoiceAmounts struct {
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"itbis,omitempty"`
	Total    *float64 `json:"total,omitempty"`
	Currency string   `json:"currency_code"`
}

// InvoiceMetadata carries processing provenance for an invoice record.
type InvoiceMetadata struct {
	ImageRef      string   `json:"image_ref,omitempty"`
	OCRConfidence *float32 `json:"ocr_confidence,omitempty"`
	Channel       string   `json:"channel"`
	ProcessedBy   string   `json:"processed_by"`
}

// Invoice is the structured record assembled from OCR text.
// It is populated once by the parser and immutable afterwards, except for the
// review/export flags which belong to the persistence layer.
type Invoice struct {
	ID           uuid.UUID               `json:"id"`
	ProcessedAt  time.Time               `json:"processed_at"`
	Status       constants.ProcessStatus `json:"status"`
	NCF          *string                 `json:"ncf,omitempty"`
	RNC          *string                 `json:"rnc,omitempty"`
	BusinessName *string                 `json:"business_name,omitempty"`
	IssueDate    *string                 `json:"issue_date,omitempty"` // YYYY-MM-DD
	Amounts      InvoiceAmounts          `json:"amounts"`
	Metadata     InvoiceMetadata         `json:"metadata"`
	RawText      string                  `json:"raw_text,omitempty"`

	// Downstream review state, owned by the repository.
	Reviewed bool `json:"reviewed"`
	Exported bool `json:"exported"`
}

// NewInvoice returns an empty record with identity, timestamp and defaults set.
func NewInvoice() *Invoice {
	return &Invoice{
		ID:          uuid.New(),
		ProcessedAt: time.Now().UTC(),
		Status:      constants.StatusReceived,
		Amounts:     InvoiceAmounts{Currency: constants.DefaultCurrency},
		Metadata: InvoiceMetadata{
			Channel:     constants.ChannelWhatsApp,
			ProcessedBy: constants.ProcessedByTag,
		},
	}
}

// Flat returns the invoice as a flat key/value map for storage sinks.
func (inv *Invoice) Flat() map[string]string {
	m := map[string]string{
		"id":            inv.ID.String(),
		"processed_at":  inv.ProcessedAt.Format(time.RFC3339),
		"status":        string(inv.Status),
		"ncf":           strOrEmpty(inv.NCF),
		"rnc":           strOrEmpty(inv.RNC),
		"business_name": strOrEmpty(inv.BusinessName),
		"issue_date":    strOrEmpty(inv.IssueDate),
		"subtotal":      amountOrEmpty(inv.Amounts.Subtotal),
		"itbis":         amountOrEmpty(inv.Amounts.Tax),
		"total":         amountOrEmpty(inv.Amounts.Total),
		"currency_code": inv.Amounts.Currency,
		"image_ref":     inv.Metadata.ImageRef,
		"channel":       inv.Metadata.Channel,
		"processed_by":  inv.Metadata.ProcessedBy,
	}
	return m
}
