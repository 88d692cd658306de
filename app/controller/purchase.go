package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/factory"
	"github.com/vibast-solutions/ms-go-purchases/app/mapper"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
)

type PurchaseController struct {
	entitlementService *service.EntitlementService
	checkoutService    *service.CheckoutService
	logger             logrus.FieldLogger
}

func NewPurchaseController(entitlementService *service.EntitlementService, checkoutService *service.CheckoutService) *PurchaseController {
	return &PurchaseController{
		entitlementService: entitlementService,
		checkoutService:    checkoutService,
		logger:             factory.NewModuleLogger("purchases-controller"),
	}
}

func (c *PurchaseController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PurchaseController) GetEntitlement(ctx echo.Context) error {
	req, err := types.NewGetEntitlementRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	item, err := c.entitlementService.CanWatch(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Get entitlement", err)
	}

	return ctx.JSON(http.StatusOK, mapper.EntitlementToProto(item))
}

func (c *PurchaseController) StartCheckout(ctx echo.Context) error {
	req, err := types.NewStartCheckoutRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	session, err := c.checkoutService.CreateCheckout(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Start checkout", err)
	}

	return ctx.JSON(http.StatusCreated, mapper.CheckoutSessionToProto(session))
}

func (c *PurchaseController) ListGrants(ctx echo.Context) error {
	req, err := types.NewListGrantsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	items, err := c.entitlementService.ListGrants(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "List grants", err)
	}

	return ctx.JSON(http.StatusOK, &types.ListGrantsResponse{Grants: mapper.PurchaseGrantsToProto(items)})
}
