package model

import "time"

// ISOTimeLayout millisecond precision UTC, e.g. 2024-05-01T12:00:00.000Z
const ISOTimeLayout = "2006-01-02T15:04:05.000Z"

// TxnEnrichment timestamp and sender of one transaction.
// Sender is omitted when the explorer could not supply it.
type TxnEnrichment struct {
	TimestampISO string  `json:"timestampIso"`
	Sender       *string `json:"sender,omitempty"`
}

// SoftFail entry used when a hash could not be enriched
func SoftFail(now time.Time) TxnEnrichment {
	return TxnEnrichment{TimestampISO: FormatISO(now)}
}

// FormatISO formats t in UTC with ISOTimeLayout
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOTimeLayout)
}

// EnrichRequest body of the batch enrich endpoint
type EnrichRequest struct {
	Hashes []string `json:"hashes"`
}
