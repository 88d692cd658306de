package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metadataVideoID    = "video_id"
	metadataVideoTitle = "video_title"
)

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
	MaxNetworkRetries         int64
	// APIBaseURL overrides the Stripe API host. Empty means api.stripe.com.
	APIBaseURL string
	Logger     logrus.FieldLogger
}

type StripeProvider struct {
	cfg      StripeConfig
	sessions *session.Client
	accounts *account.Client
	links    *accountlink.Client
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.SignatureToleranceSeconds <= 0 {
		cfg.SignatureToleranceSeconds = 300
	}
	if cfg.MaxNetworkRetries < 0 {
		cfg.MaxNetworkRetries = 0
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/"); base != "" {
		backendConfig.URL = stripe.String(base)
	}
	if cfg.Logger != nil {
		backendConfig.LeveledLogger = cfg.Logger
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)

	return &StripeProvider{
		cfg:      cfg,
		sessions: &session.Client{B: backend, Key: cfg.SecretKey},
		accounts: &account.Client{B: backend, Key: cfg.SecretKey},
		links:    &accountlink.Client{B: backend, Key: cfg.SecretKey},
	}
}

func (p *StripeProvider) Code() string {
	return CodeStripe
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(input.Currency)),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName(input.Metadata)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(input.PlatformFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(input.DestinationAccountID),
			},
		},
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
	}
	if input.ViewerID != "" {
		params.ClientReferenceID = stripe.String(input.ViewerID)
	}
	params.AddMetadata(metadataVideoID, input.Metadata.VideoID)
	params.AddMetadata(metadataVideoTitle, input.Metadata.VideoTitle)
	params.Context = ctx

	created, err := p.sessions.New(params)
	if err != nil {
		return nil, classifyStripeError("create checkout session", err)
	}

	result := &CheckoutOutput{
		TransactionID: created.ID,
		RedirectURL:   created.URL,
	}
	if created.ExpiresAt > 0 {
		expiresAt := time.Unix(created.ExpiresAt, 0).UTC()
		result.ExpiresAt = &expiresAt
	}

	return result, nil
}

func (p *StripeProvider) CreateAccount(ctx context.Context, input *CreateAccountInput) (*AccountSnapshot, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	if country := strings.TrimSpace(input.Country); country != "" {
		params.Country = stripe.String(strings.ToUpper(country))
	}
	params.AddMetadata("creator_id", input.CreatorID)
	// Retries of the same onboarding attempt must not create a second account.
	params.SetIdempotencyKey("onboarding-account-" + input.CreatorID)
	params.Context = ctx

	created, err := p.accounts.New(params)
	if err != nil {
		return nil, classifyStripeError("create account", err)
	}

	return accountSnapshot(created), nil
}

func (p *StripeProvider) GetAccount(ctx context.Context, externalAccountID string) (*AccountSnapshot, error) {
	if strings.TrimSpace(externalAccountID) == "" {
		return nil, errors.New("external account id is required")
	}

	params := &stripe.AccountParams{}
	params.Context = ctx

	found, err := p.accounts.GetByID(externalAccountID, params)
	if err != nil {
		return nil, classifyStripeError("get account", err)
	}

	return accountSnapshot(found), nil
}

func (p *StripeProvider) CreateOnboardingLink(ctx context.Context, input *OnboardingLinkInput) (*OnboardingLink, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(input.ExternalAccountID),
		Type:       stripe.String("account_onboarding"),
		RefreshURL: stripe.String(input.RefreshURL),
		ReturnURL:  stripe.String(input.ReturnURL),
	}
	params.Context = ctx

	link, err := p.links.New(params)
	if err != nil {
		return nil, classifyStripeError("create account link", err)
	}

	return &OnboardingLink{
		URL:       link.URL,
		ExpiresAt: time.Unix(link.ExpiresAt, 0).UTC(),
	}, nil
}

func (p *StripeProvider) VerifyAndParseEvent(_ context.Context, payload []byte, signature string) (*Event, error) {
	if strings.TrimSpace(p.cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret is not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                time.Duration(p.cfg.SignatureToleranceSeconds) * time.Second,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &Event{
		ProviderEventID: strings.TrimSpace(event.ID),
		EventType:       string(event.Type),
		Kind:            EventIgnored,
	}

	switch result.EventType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		checkout, err := decodeEventObject[stripe.CheckoutSession](event)
		if err != nil {
			return nil, err
		}
		result.Payment = confirmedPayment(checkout)
		result.Kind = EventPaymentConfirmed
		if result.EventType == "checkout.session.completed" && !checkoutSettled(checkout) {
			result.Kind = EventPaymentPending
		}
	case "account.updated":
		updated, err := decodeEventObject[stripe.Account](event)
		if err != nil {
			return nil, err
		}
		result.ExternalAccountID = updated.ID
		if result.ExternalAccountID == "" {
			result.ExternalAccountID = event.Account
		}
		result.Kind = EventAccountUpdated
	}

	return result, nil
}

func decodeEventObject[T any](event stripe.Event) (*T, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", ErrMalformedEvent, event.ID)
	}
	var object T
	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return &object, nil
}

func checkoutSettled(checkout *stripe.CheckoutSession) bool {
	switch checkout.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	default:
		return false
	}
}

func confirmedPayment(checkout *stripe.CheckoutSession) *ConfirmedPayment {
	email := ""
	if checkout.CustomerDetails != nil {
		email = strings.TrimSpace(checkout.CustomerDetails.Email)
	}
	if email == "" {
		email = strings.TrimSpace(checkout.CustomerEmail)
	}

	return &ConfirmedPayment{
		TransactionID: strings.TrimSpace(checkout.ID),
		PayerEmail:    email,
		AmountCents:   checkout.AmountTotal,
		Currency:      strings.ToLower(string(checkout.Currency)),
		Metadata: CheckoutMetadata{
			VideoID:    strings.TrimSpace(checkout.Metadata[metadataVideoID]),
			VideoTitle: checkout.Metadata[metadataVideoTitle],
		},
	}
}

func accountSnapshot(acct *stripe.Account) *AccountSnapshot {
	snapshot := &AccountSnapshot{
		ExternalAccountID: acct.ID,
		DetailsSubmitted:  acct.DetailsSubmitted,
		ChargesEnabled:    acct.ChargesEnabled,
		PayoutsEnabled:    acct.PayoutsEnabled,
		Requirements:      []string{},
	}
	if acct.Requirements != nil && acct.Requirements.CurrentlyDue != nil {
		snapshot.Requirements = append(snapshot.Requirements, acct.Requirements.CurrentlyDue...)
	}
	return snapshot
}

func productName(metadata CheckoutMetadata) string {
	if name := strings.TrimSpace(metadata.VideoTitle); name != "" {
		return name
	}
	return "video-" + metadata.VideoID
}

func classifyStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError || stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: stripe %s: %v", ErrUnavailable, op, err)
		}
		return fmt.Errorf("stripe %s failed: %w", op, err)
	}
	return fmt.Errorf("%w: stripe %s: %v", ErrUnavailable, op, err)
}
