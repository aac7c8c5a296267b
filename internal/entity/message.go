package entity

// InboundMessage is a normalized inbound payload from a messaging provider.
type InboundMessage struct {
	From             string `json:"from"`
	To               string `json:"to"`
	MessageID        string `json:"message_id"`
	NumMedia         int    `json:"num_media"`
	MediaURL         string `json:"media_url,omitempty"`
	MediaContentType string `json:"media_content_type,omitempty"`
	Body             string `json:"body,omitempty"`
	Provider         string `json:"provider"` // "twilio" | "greenapi"
}

// ProcessingResult is the outcome of one end-to-end image processing run.
type ProcessingResult struct {
	Success  bool     `json:"success"`
	Invoice  *Invoice `json:"invoice,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error_message,omitempty"`
}
