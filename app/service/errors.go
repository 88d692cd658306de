package service

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrVideoNotFound          = errors.New("video not found")
	ErrAccountNotFound        = errors.New("payment account not found")
	ErrVideoIsFree            = errors.New("video is free")
	ErrCreatorPaymentNotSetUp = errors.New("creator payment account is not set up")
	ErrUpstreamUnavailable    = errors.New("payment processor unavailable")
	ErrProviderUnsupported    = errors.New("provider is not supported")
	ErrWebhookRejected        = errors.New("webhook rejected")
	ErrValidationFailed       = errors.New("webhook payload failed validation")
	ErrPayerNotResolved       = errors.New("payer could not be resolved to a viewer")
)

const (
	ReasonNoPaymentAccount  = "no_payment_account"
	ReasonChargesNotEnabled = "charges_not_enabled"
)

// CreatorPaymentNotSetUpError carries the remediation shown to the viewer.
// It matches ErrCreatorPaymentNotSetUp under errors.Is.
type CreatorPaymentNotSetUpError struct {
	Reason  string
	Message string
}

func (e *CreatorPaymentNotSetUpError) Error() string {
	return ErrCreatorPaymentNotSetUp.Error() + ": " + e.Reason
}

func (e *CreatorPaymentNotSetUpError) Is(target error) bool {
	return target == ErrCreatorPaymentNotSetUp
}

func newCreatorPaymentNotSetUpError(reason string) *CreatorPaymentNotSetUpError {
	message := "The creator has not finished setting up payments for this video yet. Please try again later."
	if reason == ReasonNoPaymentAccount {
		message = "The creator has not connected a payment account yet, so this video cannot be purchased right now."
	}
	return &CreatorPaymentNotSetUpError{Reason: reason, Message: message}
}
