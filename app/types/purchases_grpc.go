package types

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// JSONCodecName is the gRPC content-subtype the purchases service speaks.
// Clients select it with grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return JSONCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

const (
	PurchasesService_ServiceName                          = "purchases.PurchasesService"
	PurchasesService_Health_FullMethodName                = "/purchases.PurchasesService/Health"
	PurchasesService_GetEntitlement_FullMethodName        = "/purchases.PurchasesService/GetEntitlement"
	PurchasesService_StartCheckout_FullMethodName         = "/purchases.PurchasesService/StartCheckout"
	PurchasesService_BeginOnboarding_FullMethodName       = "/purchases.PurchasesService/BeginOnboarding"
	PurchasesService_GetAccountStatus_FullMethodName      = "/purchases.PurchasesService/GetAccountStatus"
	PurchasesService_RefreshAccountStatus_FullMethodName  = "/purchases.PurchasesService/RefreshAccountStatus"
	PurchasesService_ListGrants_FullMethodName            = "/purchases.PurchasesService/ListGrants"
	PurchasesService_HandleProviderWebhook_FullMethodName = "/purchases.PurchasesService/HandleProviderWebhook"
)

type PurchasesServiceServer interface {
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
	GetEntitlement(context.Context, *GetEntitlementRequest) (*EntitlementResponse, error)
	StartCheckout(context.Context, *StartCheckoutRequest) (*StartCheckoutResponse, error)
	BeginOnboarding(context.Context, *CreatorAccountRequest) (*OnboardingResponse, error)
	GetAccountStatus(context.Context, *CreatorAccountRequest) (*AccountStatusResponse, error)
	RefreshAccountStatus(context.Context, *CreatorAccountRequest) (*AccountStatusResponse, error)
	ListGrants(context.Context, *ListGrantsRequest) (*ListGrantsResponse, error)
	HandleProviderWebhook(context.Context, *HandleProviderWebhookRequest) (*HandleProviderWebhookResponse, error)
	mustEmbedUnimplementedPurchasesServiceServer()
}

type UnimplementedPurchasesServiceServer struct{}

func (UnimplementedPurchasesServiceServer) Health(context.Context, *HealthRequest) (*HealthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Health not implemented")
}

func (UnimplementedPurchasesServiceServer) GetEntitlement(context.Context, *GetEntitlementRequest) (*EntitlementResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEntitlement not implemented")
}

func (UnimplementedPurchasesServiceServer) StartCheckout(context.Context, *StartCheckoutRequest) (*StartCheckoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StartCheckout not implemented")
}

func (UnimplementedPurchasesServiceServer) BeginOnboarding(context.Context, *CreatorAccountRequest) (*OnboardingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BeginOnboarding not implemented")
}

func (UnimplementedPurchasesServiceServer) GetAccountStatus(context.Context, *CreatorAccountRequest) (*AccountStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccountStatus not implemented")
}

func (UnimplementedPurchasesServiceServer) RefreshAccountStatus(context.Context, *CreatorAccountRequest) (*AccountStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshAccountStatus not implemented")
}

func (UnimplementedPurchasesServiceServer) ListGrants(context.Context, *ListGrantsRequest) (*ListGrantsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListGrants not implemented")
}

func (UnimplementedPurchasesServiceServer) HandleProviderWebhook(context.Context, *HandleProviderWebhookRequest) (*HandleProviderWebhookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleProviderWebhook not implemented")
}

func (UnimplementedPurchasesServiceServer) mustEmbedUnimplementedPurchasesServiceServer() {}

func RegisterPurchasesServiceServer(s grpc.ServiceRegistrar, srv PurchasesServiceServer) {
	s.RegisterService(&PurchasesService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(PurchasesServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PurchasesServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(PurchasesServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var PurchasesService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PurchasesService_ServiceName,
	HandlerType: (*PurchasesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Health",
			Handler:    unaryHandler(PurchasesService_Health_FullMethodName, PurchasesServiceServer.Health),
		},
		{
			MethodName: "GetEntitlement",
			Handler:    unaryHandler(PurchasesService_GetEntitlement_FullMethodName, PurchasesServiceServer.GetEntitlement),
		},
		{
			MethodName: "StartCheckout",
			Handler:    unaryHandler(PurchasesService_StartCheckout_FullMethodName, PurchasesServiceServer.StartCheckout),
		},
		{
			MethodName: "BeginOnboarding",
			Handler:    unaryHandler(PurchasesService_BeginOnboarding_FullMethodName, PurchasesServiceServer.BeginOnboarding),
		},
		{
			MethodName: "GetAccountStatus",
			Handler:    unaryHandler(PurchasesService_GetAccountStatus_FullMethodName, PurchasesServiceServer.GetAccountStatus),
		},
		{
			MethodName: "RefreshAccountStatus",
			Handler:    unaryHandler(PurchasesService_RefreshAccountStatus_FullMethodName, PurchasesServiceServer.RefreshAccountStatus),
		},
		{
			MethodName: "ListGrants",
			Handler:    unaryHandler(PurchasesService_ListGrants_FullMethodName, PurchasesServiceServer.ListGrants),
		},
		{
			MethodName: "HandleProviderWebhook",
			Handler:    unaryHandler(PurchasesService_HandleProviderWebhook_FullMethodName, PurchasesServiceServer.HandleProviderWebhook),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "purchases.proto",
}

type PurchasesServiceClient interface {
	Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error)
	GetEntitlement(ctx context.Context, in *GetEntitlementRequest, opts ...grpc.CallOption) (*EntitlementResponse, error)
	StartCheckout(ctx context.Context, in *StartCheckoutRequest, opts ...grpc.CallOption) (*StartCheckoutResponse, error)
	BeginOnboarding(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*OnboardingResponse, error)
	GetAccountStatus(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*AccountStatusResponse, error)
	RefreshAccountStatus(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*AccountStatusResponse, error)
	ListGrants(ctx context.Context, in *ListGrantsRequest, opts ...grpc.CallOption) (*ListGrantsResponse, error)
	HandleProviderWebhook(ctx context.Context, in *HandleProviderWebhookRequest, opts ...grpc.CallOption) (*HandleProviderWebhookResponse, error)
}

type purchasesServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPurchasesServiceClient(cc grpc.ClientConnInterface) PurchasesServiceClient {
	return &purchasesServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *purchasesServiceClient) Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error) {
	return invoke[HealthResponse](ctx, c.cc, PurchasesService_Health_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) GetEntitlement(ctx context.Context, in *GetEntitlementRequest, opts ...grpc.CallOption) (*EntitlementResponse, error) {
	return invoke[EntitlementResponse](ctx, c.cc, PurchasesService_GetEntitlement_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) StartCheckout(ctx context.Context, in *StartCheckoutRequest, opts ...grpc.CallOption) (*StartCheckoutResponse, error) {
	return invoke[StartCheckoutResponse](ctx, c.cc, PurchasesService_StartCheckout_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) BeginOnboarding(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*OnboardingResponse, error) {
	return invoke[OnboardingResponse](ctx, c.cc, PurchasesService_BeginOnboarding_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) GetAccountStatus(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*AccountStatusResponse, error) {
	return invoke[AccountStatusResponse](ctx, c.cc, PurchasesService_GetAccountStatus_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) RefreshAccountStatus(ctx context.Context, in *CreatorAccountRequest, opts ...grpc.CallOption) (*AccountStatusResponse, error) {
	return invoke[AccountStatusResponse](ctx, c.cc, PurchasesService_RefreshAccountStatus_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) ListGrants(ctx context.Context, in *ListGrantsRequest, opts ...grpc.CallOption) (*ListGrantsResponse, error) {
	return invoke[ListGrantsResponse](ctx, c.cc, PurchasesService_ListGrants_FullMethodName, in, opts)
}

func (c *purchasesServiceClient) HandleProviderWebhook(ctx context.Context, in *HandleProviderWebhookRequest, opts ...grpc.CallOption) (*HandleProviderWebhookResponse, error) {
	return invoke[HandleProviderWebhookResponse](ctx, c.cc, PurchasesService_HandleProviderWebhook_FullMethodName, in, opts)
}
