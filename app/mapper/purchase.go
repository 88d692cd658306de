package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
)

func EntitlementToProto(item *service.Entitlement) *types.EntitlementResponse {
	if item == nil {
		return nil
	}

	return &types.EntitlementResponse{
		VideoId:  item.VideoID,
		ViewerId: item.ViewerID,
		CanWatch: item.CanWatch,
	}
}

func CheckoutSessionToProto(item *service.CheckoutSession) *types.StartCheckoutResponse {
	if item == nil {
		return nil
	}

	return &types.StartCheckoutResponse{
		TransactionId:    item.TransactionID,
		RedirectUrl:      item.RedirectURL,
		ExpiresAt:        formatTimePtr(item.ExpiresAt),
		VideoId:          item.VideoID,
		AmountCents:      item.AmountCents,
		PlatformFeeCents: item.PlatformFeeCents,
		Currency:         item.Currency,
	}
}

func OnboardingLinkToProto(link *provider.OnboardingLink) *types.OnboardingResponse {
	if link == nil {
		return nil
	}

	return &types.OnboardingResponse{
		OnboardingUrl: link.URL,
		ExpiresAt:     link.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func AccountStatusToProto(item *entity.PaymentAccount) *types.AccountStatusResponse {
	if item == nil {
		return nil
	}

	requirements := item.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	return &types.AccountStatusResponse{
		CreatorId:               item.CreatorID,
		HasAccount:              item.HasExternalAccount(),
		ExternalAccountId:       derefString(item.ExternalAccountID),
		Submitted:               item.DetailsSubmitted,
		ChargeCapable:           item.ChargesEnabled,
		PayoutCapable:           item.PayoutsEnabled,
		OutstandingRequirements: append([]string{}, requirements...),
		RefreshedAt:             formatTimePtr(item.RefreshedAt),
	}
}

func PurchaseGrantToProto(item *entity.PurchaseGrant) *types.PurchaseGrant {
	if item == nil {
		return nil
	}

	return &types.PurchaseGrant{
		Id:            item.ID,
		TransactionId: item.TransactionID,
		ViewerId:      item.ViewerID,
		VideoId:       item.VideoID,
		AmountCents:   item.AmountCents,
		Currency:      item.Currency,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PurchaseGrantsToProto(items []*entity.PurchaseGrant) []*types.PurchaseGrant {
	result := make([]*types.PurchaseGrant, 0, len(items))
	for _, item := range items {
		result = append(result, PurchaseGrantToProto(item))
	}
	return result
}

func WebhookResultToProto(item *service.WebhookResult) *types.HandleProviderWebhookResponse {
	if item == nil {
		return &types.HandleProviderWebhookResponse{Received: true}
	}

	return &types.HandleProviderWebhookResponse{
		Received:      true,
		Outcome:       string(item.Outcome),
		EventType:     item.EventType,
		TransactionId: item.TransactionID,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTimePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
