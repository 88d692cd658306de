package entity

import "time"

// PaymentAccount is the locally cached onboarding state of a creator's
// connected payment account. The capability flags are only ever written as a
// whole from processor ground truth.
type PaymentAccount struct {
	CreatorID string

	ExternalAccountID *string

	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool

	Requirements []string

	RefreshedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *PaymentAccount) HasExternalAccount() bool {
	return a != nil && a.ExternalAccountID != nil && *a.ExternalAccountID != ""
}

func (a *PaymentAccount) FullyCapable() bool {
	return a.DetailsSubmitted && a.ChargesEnabled && a.PayoutsEnabled
}
