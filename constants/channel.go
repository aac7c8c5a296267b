package constants

// Origin channels for inbound invoice images.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelCLI      = "cli"
)

// ProcessedByTag identifies this system on every record it produces.
const ProcessedByTag = "LECTOR-NCF"

// DefaultCurrency is the local currency for Dominican fiscal invoices.
const DefaultCurrency = "DOP"
