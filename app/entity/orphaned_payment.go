package entity

import "time"

// OrphanedPayment records a confirmed payment whose payer could not be
// resolved to a viewer. Rows are never corrected automatically.
type OrphanedPayment struct {
	ID uint64

	TransactionID string
	PayerEmail    string
	VideoID       string

	AmountCents int64
	Currency    string

	Occurrences int32

	FirstSeenAt time.Time
	LastSeenAt  time.Time
}
