package grpc

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
	"github.com/vibast-solutions/ms-go-purchases/config"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcVideoRepo struct {
	videos map[string]*entity.Video
}

func (r *grpcVideoRepo) FindByID(_ context.Context, id string) (*entity.Video, error) {
	return r.videos[id], nil
}

type grpcGrantRepo struct {
	existsFn func(viewerID, videoID string) (bool, error)
}

func (r *grpcGrantRepo) CreateIfAbsent(context.Context, *entity.PurchaseGrant) (bool, error) {
	return true, nil
}

func (r *grpcGrantRepo) ExistsForViewerVideo(_ context.Context, viewerID, videoID string) (bool, error) {
	if r.existsFn != nil {
		return r.existsFn(viewerID, videoID)
	}
	return false, nil
}

func (r *grpcGrantRepo) ListByViewer(context.Context, string, int32, int32) ([]*entity.PurchaseGrant, error) {
	return []*entity.PurchaseGrant{}, nil
}

type grpcAccountRepo struct {
	account *entity.PaymentAccount
}

func (r *grpcAccountRepo) CreateIfAbsent(context.Context, string, time.Time) error {
	return nil
}

func (r *grpcAccountRepo) AttachExternalAccount(context.Context, string, string, time.Time) (bool, error) {
	return true, nil
}

func (r *grpcAccountRepo) OverwriteCapabilities(context.Context, *entity.PaymentAccount) error {
	return nil
}

func (r *grpcAccountRepo) FindByCreatorID(context.Context, string) (*entity.PaymentAccount, error) {
	if r.account == nil {
		return nil, nil
	}
	copyItem := *r.account
	return &copyItem, nil
}

func (r *grpcAccountRepo) FindByExternalAccountID(context.Context, string) (*entity.PaymentAccount, error) {
	return nil, nil
}

func (r *grpcAccountRepo) ListDueRefresh(context.Context, time.Time, int32) ([]*entity.PaymentAccount, error) {
	return []*entity.PaymentAccount{}, nil
}

type grpcViewerRepo struct{}

func (r *grpcViewerRepo) FindIDByEmail(context.Context, string) (string, error) {
	return "viewer-1", nil
}

type grpcOrphanRepo struct{}

func (r *grpcOrphanRepo) Record(context.Context, *entity.OrphanedPayment) error {
	return nil
}

type grpcDeliveryRepo struct{}

func (r *grpcDeliveryRepo) Create(context.Context, *entity.WebhookDelivery) error {
	return nil
}

type grpcProvider struct {
	checkoutErr error
	getErr      error
	eventErr    error
}

func (p *grpcProvider) Code() string {
	return provider.CodeStripe
}

func (p *grpcProvider) CreateCheckout(context.Context, *provider.CheckoutInput) (*provider.CheckoutOutput, error) {
	if p.checkoutErr != nil {
		return nil, p.checkoutErr
	}
	return &provider.CheckoutOutput{TransactionID: "tx_1", RedirectURL: "https://checkout.stripe.test/tx_1"}, nil
}

func (p *grpcProvider) CreateAccount(_ context.Context, input *provider.CreateAccountInput) (*provider.AccountSnapshot, error) {
	return &provider.AccountSnapshot{ExternalAccountID: "acct_" + input.CreatorID}, nil
}

func (p *grpcProvider) GetAccount(_ context.Context, id string) (*provider.AccountSnapshot, error) {
	if p.getErr != nil {
		return nil, p.getErr
	}
	return &provider.AccountSnapshot{ExternalAccountID: id, DetailsSubmitted: true, ChargesEnabled: true, PayoutsEnabled: true}, nil
}

func (p *grpcProvider) CreateOnboardingLink(_ context.Context, input *provider.OnboardingLinkInput) (*provider.OnboardingLink, error) {
	return &provider.OnboardingLink{URL: "https://connect.stripe.test/" + input.ExternalAccountID, ExpiresAt: time.Now().Add(5 * time.Minute)}, nil
}

func (p *grpcProvider) VerifyAndParseEvent(context.Context, []byte, string) (*provider.Event, error) {
	if p.eventErr != nil {
		return nil, p.eventErr
	}
	return &provider.Event{EventType: "charge.refunded", Kind: provider.EventIgnored}, nil
}

func newTestServer(account *entity.PaymentAccount, processor *grpcProvider, grants *grpcGrantRepo) *Server {
	videos := &grpcVideoRepo{videos: map[string]*entity.Video{
		"video-1":    {ID: "video-1", CreatorID: "creator-1", Title: "Intro to Go", PriceCents: 2999},
		"video-free": {ID: "video-free", CreatorID: "creator-1"},
	}}
	accounts := &grpcAccountRepo{account: account}
	if grants == nil {
		grants = &grpcGrantRepo{}
	}

	entitlements := service.NewEntitlementService(videos, grants, nil)
	checkout := service.NewCheckoutService(videos, accounts, processor, config.MarketplaceConfig{Currency: "usd"})
	accountSvc := service.NewAccountService(accounts, processor, config.MarketplaceConfig{}, config.JobsConfig{})
	webhooks := service.NewWebhookService(provider.NewRegistry(processor), grants, &grpcViewerRepo{}, &grpcOrphanRepo{}, &grpcDeliveryRepo{}, accountSvc, nil)

	return NewServer(entitlements, checkout, accountSvc, webhooks)
}

func capableAccount() *entity.PaymentAccount {
	acct := "acct_creator-1"
	return &entity.PaymentAccount{CreatorID: "creator-1", ExternalAccountID: &acct, ChargesEnabled: true, Requirements: []string{}}
}

func TestGetEntitlement(t *testing.T) {
	grants := &grpcGrantRepo{existsFn: func(viewerID, videoID string) (bool, error) {
		return viewerID == "buyer-1" && videoID == "video-1", nil
	}}
	srv := newTestServer(capableAccount(), &grpcProvider{}, grants)
	ctx := context.Background()

	resp, err := srv.GetEntitlement(ctx, &types.GetEntitlementRequest{VideoId: "video-1", ViewerId: "buyer-1"})
	if err != nil || !resp.CanWatch {
		t.Fatalf("expected buyer to watch, got %+v %v", resp, err)
	}

	resp, err = srv.GetEntitlement(ctx, &types.GetEntitlementRequest{VideoId: "video-1", ViewerId: "stranger"})
	if err != nil || resp.CanWatch {
		t.Fatalf("expected stranger blocked, got %+v %v", resp, err)
	}

	_, err = srv.GetEntitlement(ctx, &types.GetEntitlementRequest{VideoId: "video-404"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	_, err = srv.GetEntitlement(ctx, &types.GetEntitlementRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestStartCheckout(t *testing.T) {
	srv := newTestServer(capableAccount(), &grpcProvider{}, nil)

	resp, err := srv.StartCheckout(context.Background(), &types.StartCheckoutRequest{VideoId: "video-1", ViewerId: "viewer-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TransactionId != "tx_1" || resp.AmountCents != 2999 || resp.PlatformFeeCents != 300 {
		t.Fatalf("unexpected checkout response: %+v", resp)
	}
}

func TestStartCheckoutErrorCodes(t *testing.T) {
	notCapable := capableAccount()
	notCapable.ChargesEnabled = false

	cases := []struct {
		name      string
		account   *entity.PaymentAccount
		processor *grpcProvider
		videoID   string
		code      codes.Code
	}{
		{name: "free video", account: capableAccount(), processor: &grpcProvider{}, videoID: "video-free", code: codes.FailedPrecondition},
		{name: "not capable", account: notCapable, processor: &grpcProvider{}, videoID: "video-1", code: codes.FailedPrecondition},
		{name: "unavailable", account: capableAccount(), processor: &grpcProvider{checkoutErr: provider.ErrUnavailable}, videoID: "video-1", code: codes.Unavailable},
		{name: "missing video", account: capableAccount(), processor: &grpcProvider{}, videoID: "video-404", code: codes.NotFound},
	}

	for _, tc := range cases {
		srv := newTestServer(tc.account, tc.processor, nil)
		_, err := srv.StartCheckout(context.Background(), &types.StartCheckoutRequest{VideoId: tc.videoID, ViewerId: "viewer-1"})
		if status.Code(err) != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestStartCheckoutNotSetUpCarriesReason(t *testing.T) {
	notCapable := capableAccount()
	notCapable.ChargesEnabled = false
	srv := newTestServer(notCapable, &grpcProvider{}, nil)

	_, err := srv.StartCheckout(context.Background(), &types.StartCheckoutRequest{VideoId: "video-1", ViewerId: "viewer-1"})
	if !strings.HasPrefix(status.Convert(err).Message(), service.ReasonChargesNotEnabled) {
		t.Fatalf("expected reason prefix, got %v", err)
	}
}

func TestAccountMethods(t *testing.T) {
	srv := newTestServer(capableAccount(), &grpcProvider{}, nil)
	ctx := context.Background()
	req := &types.CreatorAccountRequest{CreatorId: "creator-1"}

	link, err := srv.BeginOnboarding(ctx, req)
	if err != nil || link.OnboardingUrl != "https://connect.stripe.test/acct_creator-1" {
		t.Fatalf("unexpected onboarding: %+v %v", link, err)
	}

	refreshed, err := srv.RefreshAccountStatus(ctx, req)
	if err != nil || !refreshed.PayoutCapable || refreshed.RefreshedAt == "" {
		t.Fatalf("unexpected refresh: %+v %v", refreshed, err)
	}

	statusResp, err := srv.GetAccountStatus(ctx, req)
	if err != nil || !statusResp.HasAccount {
		t.Fatalf("unexpected status: %+v %v", statusResp, err)
	}
}

func TestRefreshAccountStatusErrors(t *testing.T) {
	ctx := context.Background()
	req := &types.CreatorAccountRequest{CreatorId: "creator-1"}

	_, err := newTestServer(nil, &grpcProvider{}, nil).RefreshAccountStatus(ctx, req)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	_, err = newTestServer(capableAccount(), &grpcProvider{getErr: provider.ErrUnavailable}, nil).RefreshAccountStatus(ctx, req)
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestHandleProviderWebhook(t *testing.T) {
	req := &types.HandleProviderWebhookRequest{Provider: "stripe", Signature: "t=1,v1=abc", Payload: `{"id":"evt_1"}`}

	resp, err := newTestServer(nil, &grpcProvider{}, nil).HandleProviderWebhook(context.Background(), req)
	if err != nil || !resp.Received || resp.Outcome != string(service.WebhookOutcomeIgnored) {
		t.Fatalf("unexpected webhook response: %+v %v", resp, err)
	}

	_, err = newTestServer(nil, &grpcProvider{eventErr: provider.ErrInvalidSignature}, nil).HandleProviderWebhook(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
