package entity

import "time"

const (
	WebhookDeliveryProcessed int32 = 10
	WebhookDeliveryDuplicate int32 = 11
	WebhookDeliveryIgnored   int32 = 12
	WebhookDeliveryRejected  int32 = 20
	WebhookDeliveryFailed    int32 = 30
)

type WebhookDelivery struct {
	ID uint64

	Provider        string
	ProviderEventID *string
	EventType       string
	TransactionID   *string

	Signature   string
	PayloadJSON string
	Status      int32
	Error       *string

	CreatedAt time.Time
}
