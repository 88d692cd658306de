package entity

import "time"

type PurchaseGrant struct {
	ID uint64

	TransactionID string
	ViewerID      string
	VideoID       string

	AmountCents int64
	Currency    string

	CreatedAt time.Time
}
