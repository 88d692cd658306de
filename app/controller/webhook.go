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

type WebhookController struct {
	webhookService *service.WebhookService
	logger         logrus.FieldLogger
}

func NewWebhookController(webhookService *service.WebhookService) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		logger:         factory.NewModuleLogger("webhooks-controller"),
	}
}

// HandleProviderWebhook answers 200 only once the delivery is durably applied
// or known to be a no-op. Rejections are 400 and store failures 500, so the
// sender's own retry policy takes over.
func (c *WebhookController) HandleProviderWebhook(ctx echo.Context) error {
	req, err := types.NewHandleProviderWebhookRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeWebhookRejected, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, CodeWebhookRejected, err.Error())
	}

	logger := factory.LoggerWithContext(c.logger, ctx).WithField("provider", req.GetProvider())
	result, err := c.webhookService.HandleProviderWebhook(ctx.Request().Context(), req)
	if err != nil {
		logger.WithError(err).Warn("Provider webhook not applied")
		return writeServiceError(ctx, logger, "Handle provider webhook", err)
	}

	logger.WithFields(logrus.Fields{
		"event_type":     result.EventType,
		"outcome":        result.Outcome,
		"transaction_id": result.TransactionID,
	}).Info("Provider webhook handled")

	return ctx.JSON(http.StatusOK, mapper.WebhookResultToProto(result))
}
