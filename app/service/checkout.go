package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/config"
)

const (
	defaultCurrency       = "usd"
	defaultTitleMaxLength = 100
	videoIDPlaceholder    = "{video_id}"
	creatorIDPlaceholder  = "{creator_id}"
)

type createCheckoutRequest interface {
	GetVideoId() string
	GetViewerId() string
}

type paymentAccountReader interface {
	FindByCreatorID(ctx context.Context, creatorID string) (*entity.PaymentAccount, error)
}

type CheckoutService struct {
	videoRepo      videoRepository
	accountRepo    paymentAccountReader
	processor      provider.Provider
	marketplaceCfg config.MarketplaceConfig
}

func NewCheckoutService(
	videoRepo videoRepository,
	accountRepo paymentAccountReader,
	processor provider.Provider,
	marketplaceCfg config.MarketplaceConfig,
) *CheckoutService {
	return &CheckoutService{
		videoRepo:      videoRepo,
		accountRepo:    accountRepo,
		processor:      processor,
		marketplaceCfg: marketplaceCfg,
	}
}

type CheckoutSession struct {
	TransactionID    string
	RedirectURL      string
	ExpiresAt        *time.Time
	VideoID          string
	AmountCents      int64
	PlatformFeeCents int64
	Currency         string
}

// CreateCheckout opens a processor-hosted transaction for a priced video. It
// persists nothing; the grant is written later from the confirmation event.
func (s *CheckoutService) CreateCheckout(ctx context.Context, req createCheckoutRequest) (*CheckoutSession, error) {
	videoID := strings.TrimSpace(req.GetVideoId())
	viewerID := strings.TrimSpace(req.GetViewerId())
	if videoID == "" || viewerID == "" {
		return nil, ErrInvalidRequest
	}

	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, ErrVideoNotFound
	}
	if video.IsFree() {
		return nil, ErrVideoIsFree
	}
	if viewerID == video.CreatorID {
		return nil, fmt.Errorf("%w: creators cannot purchase their own videos", ErrInvalidRequest)
	}

	account, err := s.accountRepo.FindByCreatorID(ctx, video.CreatorID)
	if err != nil {
		return nil, err
	}
	if !account.HasExternalAccount() {
		return nil, newCreatorPaymentNotSetUpError(ReasonNoPaymentAccount)
	}
	if !account.ChargesEnabled {
		return nil, newCreatorPaymentNotSetUpError(ReasonChargesNotEnabled)
	}

	split := ComputeSplit(video.PriceCents)
	currency := s.currency()

	out, err := s.processor.CreateCheckout(ctx, &provider.CheckoutInput{
		ViewerID:             viewerID,
		AmountCents:          video.PriceCents,
		PlatformFeeCents:     split.PlatformFee,
		Currency:             currency,
		DestinationAccountID: *account.ExternalAccountID,
		Metadata: provider.CheckoutMetadata{
			VideoID:    video.ID,
			VideoTitle: truncateRunes(strings.TrimSpace(video.Title), s.titleMaxLength()),
		},
		SuccessURL: expandURLTemplate(s.marketplaceCfg.CheckoutSuccessURL, videoIDPlaceholder, video.ID),
		CancelURL:  expandURLTemplate(s.marketplaceCfg.CheckoutCancelURL, videoIDPlaceholder, video.ID),
	})
	if err != nil {
		return nil, wrapProviderErr(err)
	}

	return &CheckoutSession{
		TransactionID:    out.TransactionID,
		RedirectURL:      out.RedirectURL,
		ExpiresAt:        out.ExpiresAt,
		VideoID:          video.ID,
		AmountCents:      video.PriceCents,
		PlatformFeeCents: split.PlatformFee,
		Currency:         currency,
	}, nil
}

func (s *CheckoutService) currency() string {
	if c := strings.ToLower(strings.TrimSpace(s.marketplaceCfg.Currency)); c != "" {
		return c
	}
	return defaultCurrency
}

func (s *CheckoutService) titleMaxLength() int {
	if s.marketplaceCfg.MetadataTitleMaxLength > 0 {
		return s.marketplaceCfg.MetadataTitleMaxLength
	}
	return defaultTitleMaxLength
}

func truncateRunes(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func expandURLTemplate(template, placeholder, value string) string {
	return strings.ReplaceAll(strings.TrimSpace(template), placeholder, url.PathEscape(value))
}
