package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const (
	DefaultListLimit    = int32(100)
	MaxWebhookBodyBytes = int64(65536)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct reports the first failing field in the wire name the caller
// sent.
func validateStruct(target interface{}) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fieldErr := fieldErrs[0]
	switch fieldErr.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fieldErr.Field())
	case "max":
		return fmt.Errorf("%s must be at most %s", fieldErr.Field(), fieldErr.Param())
	case "min":
		return fmt.Errorf("%s must be at least %s", fieldErr.Field(), fieldErr.Param())
	default:
		return fmt.Errorf("%s is invalid", fieldErr.Field())
	}
}

func NewGetEntitlementRequestFromContext(ctx echo.Context) (*GetEntitlementRequest, error) {
	return &GetEntitlementRequest{
		VideoId:  strings.TrimSpace(ctx.Param("id")),
		ViewerId: strings.TrimSpace(ctx.QueryParam("viewer_id")),
	}, nil
}

func (r *GetEntitlementRequest) Validate() error {
	return validateStruct(r)
}

func NewStartCheckoutRequestFromContext(ctx echo.Context) (*StartCheckoutRequest, error) {
	var body StartCheckoutRequest
	if err := ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	body.VideoId = strings.TrimSpace(ctx.Param("id"))
	body.ViewerId = strings.TrimSpace(body.ViewerId)

	return &body, nil
}

func (r *StartCheckoutRequest) Validate() error {
	return validateStruct(r)
}

func NewCreatorAccountRequestFromContext(ctx echo.Context) (*CreatorAccountRequest, error) {
	return &CreatorAccountRequest{CreatorId: strings.TrimSpace(ctx.Param("id"))}, nil
}

func (r *CreatorAccountRequest) Validate() error {
	return validateStruct(r)
}

func NewListGrantsRequestFromContext(ctx echo.Context) (*ListGrantsRequest, error) {
	req := &ListGrantsRequest{
		ViewerId: strings.TrimSpace(ctx.Param("id")),
		Limit:    DefaultListLimit,
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListGrantsRequest) Validate() error {
	if r.Limit == 0 {
		r.Limit = DefaultListLimit
	}
	return validateStruct(r)
}

// NewHandleProviderWebhookRequestFromContext keeps the raw body untouched for
// signature verification. A gateway may instead forward a JSON envelope with
// payload and signature fields.
func NewHandleProviderWebhookRequestFromContext(ctx echo.Context) (*HandleProviderWebhookRequest, error) {
	signature := strings.TrimSpace(ctx.Request().Header.Get("Stripe-Signature"))
	if signature == "" {
		signature = strings.TrimSpace(ctx.Request().Header.Get("X-Provider-Signature"))
	}

	body := http.MaxBytesReader(ctx.Response(), ctx.Request().Body, MaxWebhookBodyBytes)
	rawBody, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	req := &HandleProviderWebhookRequest{
		RequestId: strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)),
		Provider:  strings.ToLower(strings.TrimSpace(ctx.Param("provider"))),
		Signature: signature,
		Payload:   string(rawBody),
	}

	var envelope struct {
		Payload   string `json:"payload"`
		Signature string `json:"signature"`
	}
	if len(rawBody) > 0 && json.Unmarshal(rawBody, &envelope) == nil {
		if strings.TrimSpace(envelope.Payload) != "" {
			req.Payload = envelope.Payload
		}
		if strings.TrimSpace(envelope.Signature) != "" {
			req.Signature = strings.TrimSpace(envelope.Signature)
		}
	}

	return req, nil
}

func (r *HandleProviderWebhookRequest) Validate() error {
	if strings.TrimSpace(r.GetPayload()) == "" {
		return errors.New("payload is required")
	}
	return validateStruct(r)
}
