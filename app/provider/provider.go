package provider

import (
	"context"
	"errors"
	"time"
)

const CodeStripe = "stripe"

var (
	// ErrUnavailable marks processor failures worth retrying: network errors,
	// timeouts, rate limiting and 5xx responses.
	ErrUnavailable      = errors.New("payment processor unavailable")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// CheckoutMetadata is the closed set of keys attached to a checkout and read
// back on confirmation.
type CheckoutMetadata struct {
	VideoID    string
	VideoTitle string
}

type CheckoutInput struct {
	ViewerID             string
	AmountCents          int64
	PlatformFeeCents     int64
	Currency             string
	DestinationAccountID string
	Metadata             CheckoutMetadata
	SuccessURL           string
	CancelURL            string
}

type CheckoutOutput struct {
	TransactionID string
	RedirectURL   string
	ExpiresAt     *time.Time
}

type CreateAccountInput struct {
	CreatorID string
	Country   string
}

// AccountSnapshot is the processor's ground truth for a connected account.
type AccountSnapshot struct {
	ExternalAccountID string
	DetailsSubmitted  bool
	ChargesEnabled    bool
	PayoutsEnabled    bool
	Requirements      []string
}

type OnboardingLinkInput struct {
	ExternalAccountID string
	RefreshURL        string
	ReturnURL         string
}

type OnboardingLink struct {
	URL       string
	ExpiresAt time.Time
}

type EventKind int

const (
	EventIgnored EventKind = iota
	EventPaymentConfirmed
	EventPaymentPending
	EventAccountUpdated
)

type ConfirmedPayment struct {
	TransactionID string
	PayerEmail    string
	AmountCents   int64
	Currency      string
	Metadata      CheckoutMetadata
}

// Event is a verified webhook delivery. Payment is set for payment kinds and
// ExternalAccountID for EventAccountUpdated.
type Event struct {
	ProviderEventID   string
	EventType         string
	Kind              EventKind
	Payment           *ConfirmedPayment
	ExternalAccountID string
}

type Provider interface {
	Code() string
	CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error)
	CreateAccount(ctx context.Context, input *CreateAccountInput) (*AccountSnapshot, error)
	GetAccount(ctx context.Context, externalAccountID string) (*AccountSnapshot, error)
	CreateOnboardingLink(ctx context.Context, input *OnboardingLinkInput) (*OnboardingLink, error)
	VerifyAndParseEvent(ctx context.Context, payload []byte, signature string) (*Event, error)
}
