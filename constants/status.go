package constants

// ProcessStatus is the canonical status for a processed invoice image.
type ProcessStatus string

// Stable values (store these exact strings in DB).
const (
	StatusReceived ProcessStatus = "RECEIVED" // image accepted from the channel
	StatusOCROK    ProcessStatus = "OCR_OK"   // stage 1 completed (text extracted)
	StatusParsed   ProcessStatus = "PARSED"   // stage 2 completed (fields extracted)
	StatusFailed   ProcessStatus = "FAILED"   // terminal failure
)
