package fiscal

import "math"

// DefaultTolerance is the absolute tolerance, in currency units, allowed
// between subtotal+itbis and total before the amounts are flagged incoherent.
const DefaultTolerance = 0.02

// CoherentAmounts reports whether subtotal + itbis matches total within the
// given absolute tolerance. Pass DefaultTolerance unless a caller has a reason
// not to.
func CoherentAmounts(subtotal, itbis, total, tolerance float64) bool {
	return math.Abs(subtotal+itbis-total) <= tolerance
}
