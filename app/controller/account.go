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

type AccountController struct {
	accountService *service.AccountService
	logger         logrus.FieldLogger
}

func NewAccountController(accountService *service.AccountService) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         factory.NewModuleLogger("accounts-controller"),
	}
}

func (c *AccountController) BeginOnboarding(ctx echo.Context) error {
	req, err := types.NewCreatorAccountRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	link, err := c.accountService.BeginOnboarding(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Begin onboarding", err)
	}

	return ctx.JSON(http.StatusCreated, mapper.OnboardingLinkToProto(link))
}

func (c *AccountController) GetAccountStatus(ctx echo.Context) error {
	req, err := types.NewCreatorAccountRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	account, err := c.accountService.GetStatus(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Get account status", err)
	}

	return ctx.JSON(http.StatusOK, mapper.AccountStatusToProto(account))
}

func (c *AccountController) RefreshAccountStatus(ctx echo.Context) error {
	req, err := types.NewCreatorAccountRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	account, err := c.accountService.RefreshStatus(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, factory.LoggerWithContext(c.logger, ctx), "Refresh account status", err)
	}

	return ctx.JSON(http.StatusOK, mapper.AccountStatusToProto(account))
}
