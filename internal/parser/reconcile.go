package parser

import (
	"math"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

// Reconcile fills in a single missing amount when the other two are known,
// using subtotal + itbis = total. Pure: the input is not mutated. At most one
// field can be inferred per call, by construction.
func Reconcile(a entity.InvoiceAmounts) entity.InvoiceAmounts {
	if a.Total != nil && a.Tax != nil && a.Subtotal == nil {
		a.Subtotal = entity.Float64Ptr(round2(*a.Total - *a.Tax))
	}
	if a.Subtotal != nil && a.Total != nil && a.Tax == nil {
		a.Tax = entity.Float64Ptr(round2(*a.Total - *a.Subtotal))
	}
	if a.Subtotal != nil && a.Tax != nil && a.Total == nil {
		a.Total = entity.Float64Ptr(round2(*a.Subtotal + *a.Tax))
	}
	return a
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
