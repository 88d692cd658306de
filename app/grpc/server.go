package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-purchases/app/mapper"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	types.UnimplementedPurchasesServiceServer
	entitlementService *service.EntitlementService
	checkoutService    *service.CheckoutService
	accountService     *service.AccountService
	webhookService     *service.WebhookService
}

func NewServer(
	entitlementService *service.EntitlementService,
	checkoutService *service.CheckoutService,
	accountService *service.AccountService,
	webhookService *service.WebhookService,
) *Server {
	return &Server{
		entitlementService: entitlementService,
		checkoutService:    checkoutService,
		accountService:     accountService,
		webhookService:     webhookService,
	}
}

func (s *Server) Health(_ context.Context, _ *types.HealthRequest) (*types.HealthResponse, error) {
	return &types.HealthResponse{Status: "ok"}, nil
}

func (s *Server) GetEntitlement(ctx context.Context, req *types.GetEntitlementRequest) (*types.EntitlementResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.entitlementService.CanWatch(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Get entitlement", err)
	}

	return mapper.EntitlementToProto(item), nil
}

func (s *Server) StartCheckout(ctx context.Context, req *types.StartCheckoutRequest) (*types.StartCheckoutResponse, error) {
	l := loggerWithContext(ctx)
	if err := req.Validate(); err != nil {
		l.WithError(err).Debug("Start checkout validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	session, err := s.checkoutService.CreateCheckout(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Start checkout", err)
	}

	return mapper.CheckoutSessionToProto(session), nil
}

func (s *Server) BeginOnboarding(ctx context.Context, req *types.CreatorAccountRequest) (*types.OnboardingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	link, err := s.accountService.BeginOnboarding(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Begin onboarding", err)
	}

	return mapper.OnboardingLinkToProto(link), nil
}

func (s *Server) GetAccountStatus(ctx context.Context, req *types.CreatorAccountRequest) (*types.AccountStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	account, err := s.accountService.GetStatus(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Get account status", err)
	}

	return mapper.AccountStatusToProto(account), nil
}

func (s *Server) RefreshAccountStatus(ctx context.Context, req *types.CreatorAccountRequest) (*types.AccountStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	account, err := s.accountService.RefreshStatus(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Refresh account status", err)
	}

	return mapper.AccountStatusToProto(account), nil
}

func (s *Server) ListGrants(ctx context.Context, req *types.ListGrantsRequest) (*types.ListGrantsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	items, err := s.entitlementService.ListGrants(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "List grants", err)
	}

	return &types.ListGrantsResponse{Grants: mapper.PurchaseGrantsToProto(items)}, nil
}

func (s *Server) HandleProviderWebhook(ctx context.Context, req *types.HandleProviderWebhookRequest) (*types.HandleProviderWebhookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.webhookService.HandleProviderWebhook(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, "Handle provider webhook", err)
	}

	return mapper.WebhookResultToProto(result), nil
}

func toStatus(ctx context.Context, op string, err error) error {
	var notSetUp *service.CreatorPaymentNotSetUpError
	switch {
	case errors.As(err, &notSetUp):
		return status.Error(codes.FailedPrecondition, notSetUp.Reason+": "+notSetUp.Message)
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrProviderUnsupported),
		errors.Is(err, service.ErrWebhookRejected),
		errors.Is(err, service.ErrValidationFailed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrVideoNotFound):
		return status.Error(codes.NotFound, "video not found")
	case errors.Is(err, service.ErrAccountNotFound):
		return status.Error(codes.NotFound, "payment account not found")
	case errors.Is(err, service.ErrVideoIsFree):
		return status.Error(codes.FailedPrecondition, "video is free and cannot be purchased")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		loggerWithContext(ctx).WithError(err).Warn(op + " upstream unavailable")
		return status.Error(codes.Unavailable, "payment processor is temporarily unavailable")
	case errors.Is(err, service.ErrPayerNotResolved):
		return status.Error(codes.Internal, "payer could not be resolved")
	default:
		loggerWithContext(ctx).WithError(err).Error(op + " failed")
		return status.Error(codes.Internal, "internal server error")
	}
}
