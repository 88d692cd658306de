package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
)

const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeVideoNotFound          = "VIDEO_NOT_FOUND"
	CodeAccountNotFound        = "ACCOUNT_NOT_FOUND"
	CodeVideoIsFree            = "VIDEO_IS_FREE"
	CodeCreatorPaymentNotSetUp = "CREATOR_PAYMENT_NOT_SET_UP"
	CodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	CodeWebhookRejected        = "WEBHOOK_REJECTED"
	CodePayerNotResolved       = "PAYER_NOT_RESOLVED"
	CodeInternal               = "INTERNAL"
)

func writeError(ctx echo.Context, statusCode int, code, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps service sentinels to HTTP. Unknown errors are logged
// under op and hidden behind a generic 500.
func writeServiceError(ctx echo.Context, logger logrus.FieldLogger, op string, err error) error {
	var notSetUp *service.CreatorPaymentNotSetUpError
	switch {
	case errors.As(err, &notSetUp):
		return ctx.JSON(http.StatusPreconditionFailed, &types.ErrorResponse{
			Error:  notSetUp.Message,
			Code:   CodeCreatorPaymentNotSetUp,
			Reason: notSetUp.Reason,
		})
	case errors.Is(err, service.ErrInvalidRequest):
		return writeError(ctx, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrVideoNotFound):
		return writeError(ctx, http.StatusNotFound, CodeVideoNotFound, "video not found")
	case errors.Is(err, service.ErrAccountNotFound):
		return writeError(ctx, http.StatusNotFound, CodeAccountNotFound, "payment account not found")
	case errors.Is(err, service.ErrVideoIsFree):
		return writeError(ctx, http.StatusConflict, CodeVideoIsFree, "video is free and cannot be purchased")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		logger.WithError(err).Warn(op + " upstream unavailable")
		return writeError(ctx, http.StatusServiceUnavailable, CodeUpstreamUnavailable, "payment processor is temporarily unavailable, please retry")
	case errors.Is(err, service.ErrProviderUnsupported),
		errors.Is(err, service.ErrWebhookRejected),
		errors.Is(err, service.ErrValidationFailed):
		return writeError(ctx, http.StatusBadRequest, CodeWebhookRejected, err.Error())
	case errors.Is(err, service.ErrPayerNotResolved):
		return writeError(ctx, http.StatusInternalServerError, CodePayerNotResolved, "payer could not be resolved")
	default:
		logger.WithError(err).Error(op + " failed")
		return writeError(ctx, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
