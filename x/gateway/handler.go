// Package gateway orchestrates parse, permission check, dispatch and
// result normalization for every command.
package gateway

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/glyphdb/gateway/core"
)

var tracer = otel.Tracer("gateway")

// Handler is the gateway handler
type Handler interface {
	Execute(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new gateway handler
func NewHandler(service Service) Handler {
	return &handler{service}
}

// Execute accepts raw command text and runs it through the gateway
func (h handler) Execute(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Gateway.Handler.Execute")
	defer span.End()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	tenantID := c.Request().Header.Get(core.TenantHeader)
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "missing tenant header"})
	}

	req := Request{
		Tenant:    tenantID,
		Requester: c.Get(core.RequesterEmailCtxKey).(string),
		Token:     c.Get(core.RequesterTokenCtxKey).(string),
		Set:       c.Get(core.PermissionSetCtxKey).(core.PermissionSet),
		Text:      string(body),
	}

	envelope, err := h.service.Execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		return c.JSON(statusFor(err), echo.Map{"status": "error", "kind": kindOf(err), "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": envelope})
}

func statusFor(err error) int {
	switch err.(type) {
	case core.ErrorSyntax:
		return http.StatusBadRequest
	case core.ErrorValidation:
		return http.StatusUnprocessableEntity
	case core.ErrorAuthorization:
		return http.StatusForbidden
	case core.ErrorNotFound:
		return http.StatusNotFound
	case core.ErrorTimeout:
		return http.StatusGatewayTimeout
	case core.ErrorDatabase:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type kinder interface {
	Kind() string
}

func kindOf(err error) string {
	if k, ok := err.(kinder); ok {
		return k.Kind()
	}
	return "internal"
}
