package types

type HealthRequest struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type GetEntitlementRequest struct {
	VideoId  string `json:"video_id" validate:"required,max=64"`
	ViewerId string `json:"viewer_id,omitempty" validate:"omitempty,max=64"`
}

func (x *GetEntitlementRequest) GetVideoId() string {
	if x != nil {
		return x.VideoId
	}
	return ""
}

func (x *GetEntitlementRequest) GetViewerId() string {
	if x != nil {
		return x.ViewerId
	}
	return ""
}

type EntitlementResponse struct {
	VideoId  string `json:"video_id"`
	ViewerId string `json:"viewer_id,omitempty"`
	CanWatch bool   `json:"can_watch"`
}

type StartCheckoutRequest struct {
	VideoId  string `json:"video_id" validate:"required,max=64"`
	ViewerId string `json:"viewer_id" validate:"required,max=64"`
}

func (x *StartCheckoutRequest) GetVideoId() string {
	if x != nil {
		return x.VideoId
	}
	return ""
}

func (x *StartCheckoutRequest) GetViewerId() string {
	if x != nil {
		return x.ViewerId
	}
	return ""
}

type StartCheckoutResponse struct {
	TransactionId    string `json:"transaction_id"`
	RedirectUrl      string `json:"redirect_url"`
	ExpiresAt        string `json:"expires_at,omitempty"`
	VideoId          string `json:"video_id"`
	AmountCents      int64  `json:"amount_cents"`
	PlatformFeeCents int64  `json:"platform_fee_cents"`
	Currency         string `json:"currency"`
}

// CreatorAccountRequest addresses one creator's payment account. It serves
// onboarding, status and refresh calls.
type CreatorAccountRequest struct {
	CreatorId string `json:"creator_id" validate:"required,max=64"`
}

func (x *CreatorAccountRequest) GetCreatorId() string {
	if x != nil {
		return x.CreatorId
	}
	return ""
}

type OnboardingResponse struct {
	OnboardingUrl string `json:"onboarding_url"`
	ExpiresAt     string `json:"expires_at"`
}

type AccountStatusResponse struct {
	CreatorId               string   `json:"creator_id"`
	HasAccount              bool     `json:"has_account"`
	ExternalAccountId       string   `json:"external_account_id,omitempty"`
	Submitted               bool     `json:"submitted"`
	ChargeCapable           bool     `json:"charge_capable"`
	PayoutCapable           bool     `json:"payout_capable"`
	OutstandingRequirements []string `json:"outstanding_requirements"`
	RefreshedAt             string   `json:"refreshed_at,omitempty"`
}

type ListGrantsRequest struct {
	ViewerId string `json:"viewer_id" validate:"required,max=64"`
	Limit    int32  `json:"limit" validate:"min=1,max=500"`
	Offset   int32  `json:"offset" validate:"min=0"`
}

func (x *ListGrantsRequest) GetViewerId() string {
	if x != nil {
		return x.ViewerId
	}
	return ""
}

func (x *ListGrantsRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

func (x *ListGrantsRequest) GetOffset() int32 {
	if x != nil {
		return x.Offset
	}
	return 0
}

type PurchaseGrant struct {
	Id            uint64 `json:"id"`
	TransactionId string `json:"transaction_id"`
	ViewerId      string `json:"viewer_id"`
	VideoId       string `json:"video_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	CreatedAt     string `json:"created_at"`
}

type ListGrantsResponse struct {
	Grants []*PurchaseGrant `json:"grants"`
}

type HandleProviderWebhookRequest struct {
	RequestId string `json:"request_id,omitempty"`
	Provider  string `json:"provider" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	Payload   string `json:"payload" validate:"required"`
}

func (x *HandleProviderWebhookRequest) GetRequestId() string {
	if x != nil {
		return x.RequestId
	}
	return ""
}

func (x *HandleProviderWebhookRequest) GetProvider() string {
	if x != nil {
		return x.Provider
	}
	return ""
}

func (x *HandleProviderWebhookRequest) GetSignature() string {
	if x != nil {
		return x.Signature
	}
	return ""
}

func (x *HandleProviderWebhookRequest) GetPayload() string {
	if x != nil {
		return x.Payload
	}
	return ""
}

type HandleProviderWebhookResponse struct {
	Received      bool   `json:"received"`
	Outcome       string `json:"outcome"`
	EventType     string `json:"event_type,omitempty"`
	TransactionId string `json:"transaction_id,omitempty"`
}
