package messaging

import (
	"fmt"
	"strconv"
	"strings"
)

// User-facing texts stay in Spanish; the recipients are DR businesses.

const ConfirmationMessage = "✅ Factura recibida, procesando... ⏳"

const defaultErrorMessage = "❌ No se pudo procesar la factura. Intenta con otra imagen más clara."

func SuccessMessage(ncf string, total *float64) string {
	var b strings.Builder
	b.WriteString("📄 *Lectura Exitosa*\n\n")
	b.WriteString("✅ *NCF:* " + ncf)
	if total != nil {
		b.WriteString("\n💰 *Total:* RD$" + formatAmount(*total))
	}
	return b.String()
}

func PartialMessage(warnings []string) string {
	var b strings.Builder
	b.WriteString("⚠️ *Lectura Parcial*\n\nAdvertencias:\n")
	for i, w := range warnings {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + w)
	}
	return b.String()
}

func ErrorMessage(detail string) string {
	if detail == "" {
		return defaultErrorMessage
	}
	return fmt.Sprintf("❌ Error: %s", detail)
}

// formatAmount renders 1500 as "1,500.00".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + decPart
	if neg {
		out = "-" + out
	}
	return out
}
