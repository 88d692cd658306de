package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/factory"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
)

const maxDeliveryErrorLength = 1024

type WebhookOutcome string

const (
	WebhookOutcomeProcessed WebhookOutcome = "processed"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeIgnored   WebhookOutcome = "ignored"
)

type handleProviderWebhookRequest interface {
	GetProvider() string
	GetSignature() string
	GetPayload() string
}

type viewerResolver interface {
	FindIDByEmail(ctx context.Context, email string) (string, error)
}

type orphanedPaymentRepository interface {
	Record(ctx context.Context, orphan *entity.OrphanedPayment) error
}

type webhookDeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.WebhookDelivery) error
}

type accountRefresher interface {
	RefreshByExternalAccount(ctx context.Context, externalAccountID string) (*entity.PaymentAccount, error)
}

type WebhookResult struct {
	Outcome       WebhookOutcome
	EventType     string
	TransactionID string
	Grant         *entity.PurchaseGrant
}

type WebhookService struct {
	providerReg  *provider.Registry
	grantRepo    purchaseGrantRepository
	viewers      viewerResolver
	orphanRepo   orphanedPaymentRepository
	deliveryRepo webhookDeliveryRepository
	accounts     accountRefresher
	cache        entitlementCache
	logger       logrus.FieldLogger
}

// NewWebhookService wires the reconciler. cache may be nil.
func NewWebhookService(
	providerReg *provider.Registry,
	grantRepo purchaseGrantRepository,
	viewers viewerResolver,
	orphanRepo orphanedPaymentRepository,
	deliveryRepo webhookDeliveryRepository,
	accounts accountRefresher,
	cache entitlementCache,
) *WebhookService {
	return &WebhookService{
		providerReg:  providerReg,
		grantRepo:    grantRepo,
		viewers:      viewers,
		orphanRepo:   orphanRepo,
		deliveryRepo: deliveryRepo,
		accounts:     accounts,
		cache:        cache,
		logger:       factory.NewModuleLogger("webhook-service"),
	}
}

// HandleProviderWebhook verifies and applies one webhook delivery. A nil error
// means the delivery may be acknowledged; any error means the sender should
// retry or, for rejections, give up on its own policy.
func (s *WebhookService) HandleProviderWebhook(ctx context.Context, req handleProviderWebhookRequest) (*WebhookResult, error) {
	providerClient, err := s.providerReg.Get(req.GetProvider())
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotSupported) {
			return nil, ErrProviderUnsupported
		}
		return nil, err
	}

	event, err := providerClient.VerifyAndParseEvent(ctx, []byte(req.GetPayload()), strings.TrimSpace(req.GetSignature()))
	if err != nil {
		s.recordDelivery(ctx, req, nil, "", entity.WebhookDeliveryRejected, err)
		return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	}

	switch event.Kind {
	case provider.EventPaymentConfirmed:
		return s.applyConfirmedPayment(ctx, req, event)
	case provider.EventAccountUpdated:
		return s.applyAccountUpdate(ctx, req, event)
	default:
		txID := ""
		if event.Payment != nil {
			txID = event.Payment.TransactionID
		}
		s.recordDelivery(ctx, req, event, txID, entity.WebhookDeliveryIgnored, nil)
		return &WebhookResult{Outcome: WebhookOutcomeIgnored, EventType: event.EventType, TransactionID: txID}, nil
	}
}

func (s *WebhookService) applyConfirmedPayment(ctx context.Context, req handleProviderWebhookRequest, event *provider.Event) (*WebhookResult, error) {
	payment := event.Payment
	if err := validateConfirmedPayment(payment); err != nil {
		txID := ""
		if payment != nil {
			txID = payment.TransactionID
		}
		s.recordDelivery(ctx, req, event, txID, entity.WebhookDeliveryRejected, err)
		return nil, err
	}

	viewerID, err := s.viewers.FindIDByEmail(ctx, payment.PayerEmail)
	if err != nil {
		s.recordDelivery(ctx, req, event, payment.TransactionID, entity.WebhookDeliveryFailed, err)
		return nil, err
	}
	if viewerID == "" {
		err := s.recordOrphan(ctx, payment)
		s.recordDelivery(ctx, req, event, payment.TransactionID, entity.WebhookDeliveryFailed, err)
		return nil, err
	}

	grant := &entity.PurchaseGrant{
		TransactionID: payment.TransactionID,
		ViewerID:      viewerID,
		VideoID:       payment.Metadata.VideoID,
		AmountCents:   payment.AmountCents,
		Currency:      payment.Currency,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := s.grantRepo.CreateIfAbsent(ctx, grant)
	if err != nil {
		s.recordDelivery(ctx, req, event, payment.TransactionID, entity.WebhookDeliveryFailed, err)
		return nil, err
	}

	s.primeCache(ctx, viewerID, grant.VideoID)

	result := &WebhookResult{
		Outcome:       WebhookOutcomeProcessed,
		EventType:     event.EventType,
		TransactionID: payment.TransactionID,
	}
	status := entity.WebhookDeliveryProcessed
	if created {
		result.Grant = grant
	} else {
		result.Outcome = WebhookOutcomeDuplicate
		status = entity.WebhookDeliveryDuplicate
	}
	s.recordDelivery(ctx, req, event, payment.TransactionID, status, nil)

	return result, nil
}

func (s *WebhookService) applyAccountUpdate(ctx context.Context, req handleProviderWebhookRequest, event *provider.Event) (*WebhookResult, error) {
	_, err := s.accounts.RefreshByExternalAccount(ctx, event.ExternalAccountID)
	if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrInvalidRequest) {
		s.recordDelivery(ctx, req, event, "", entity.WebhookDeliveryIgnored, err)
		return &WebhookResult{Outcome: WebhookOutcomeIgnored, EventType: event.EventType}, nil
	}
	if err != nil {
		s.recordDelivery(ctx, req, event, "", entity.WebhookDeliveryFailed, err)
		return nil, err
	}

	s.recordDelivery(ctx, req, event, "", entity.WebhookDeliveryProcessed, nil)
	return &WebhookResult{Outcome: WebhookOutcomeProcessed, EventType: event.EventType}, nil
}

// recordOrphan keeps a durable trace of money received for nobody. The
// returned error always wraps ErrPayerNotResolved so the sender retries.
func (s *WebhookService) recordOrphan(ctx context.Context, payment *provider.ConfirmedPayment) error {
	now := time.Now().UTC()
	logger := s.logger.WithFields(logrus.Fields{
		"error_class":    "inconsistent",
		"transaction_id": payment.TransactionID,
		"video_id":       payment.Metadata.VideoID,
		"amount_cents":   payment.AmountCents,
	})

	if err := s.orphanRepo.Record(ctx, &entity.OrphanedPayment{
		TransactionID: payment.TransactionID,
		PayerEmail:    strings.ToLower(payment.PayerEmail),
		VideoID:       payment.Metadata.VideoID,
		AmountCents:   payment.AmountCents,
		Currency:      payment.Currency,
		FirstSeenAt:   now,
		LastSeenAt:    now,
	}); err != nil {
		logger = logger.WithField("orphan_record_error", err.Error())
	}
	logger.Error("confirmed payment has no matching viewer")

	return fmt.Errorf("%w: transaction %s", ErrPayerNotResolved, payment.TransactionID)
}

func (s *WebhookService) primeCache(ctx context.Context, viewerID, videoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkGranted(ctx, viewerID, videoID); err != nil {
		s.logger.WithError(err).Warn("entitlement cache write failed")
	}
}

func (s *WebhookService) recordDelivery(
	ctx context.Context,
	req handleProviderWebhookRequest,
	event *provider.Event,
	transactionID string,
	status int32,
	cause error,
) {
	delivery := &entity.WebhookDelivery{
		Provider:    strings.ToLower(strings.TrimSpace(req.GetProvider())),
		Signature:   strings.TrimSpace(req.GetSignature()),
		PayloadJSON: req.GetPayload(),
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if event != nil {
		delivery.EventType = event.EventType
		if event.ProviderEventID != "" {
			eventID := event.ProviderEventID
			delivery.ProviderEventID = &eventID
		}
	}
	if transactionID != "" {
		delivery.TransactionID = &transactionID
	}
	if cause != nil {
		msg := truncate(cause.Error(), maxDeliveryErrorLength)
		delivery.Error = &msg
	}
	_ = s.deliveryRepo.Create(ctx, delivery)
}

func validateConfirmedPayment(payment *provider.ConfirmedPayment) error {
	if payment == nil {
		return fmt.Errorf("%w: missing checkout payload", ErrValidationFailed)
	}

	missing := make([]string, 0, 4)
	if strings.TrimSpace(payment.TransactionID) == "" {
		missing = append(missing, "transaction id")
	}
	if strings.TrimSpace(payment.PayerEmail) == "" {
		missing = append(missing, "payer email")
	}
	if payment.AmountCents <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(payment.Metadata.VideoID) == "" {
		missing = append(missing, "metadata.video_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidationFailed, strings.Join(missing, ", "))
	}

	return nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
