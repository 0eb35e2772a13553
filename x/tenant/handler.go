// Package tenant routes the correct bearer credential for each tenant.
package tenant

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/glyphdb/gateway/core"
)

var tracer = otel.Tracer("tenant")

// Handler is the tenant handler
type Handler interface {
	Upsert(c echo.Context) error
	List(c echo.Context) error
	Delete(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new tenant handler
func NewHandler(service Service) Handler {
	return &handler{service}
}

type upsertRequest struct {
	Token string `json:"token"`
}

// Upsert registers or updates a tenant
func (h handler) Upsert(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Tenant.Handler.Upsert")
	defer span.End()

	var request upsertRequest
	if err := c.Bind(&request); err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	created, err := h.service.Upsert(ctx, core.Tenant{ID: c.Param("id"), Token: request.Token})
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": created})
}

// List returns every registered tenant
func (h handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Tenant.Handler.List")
	defer span.End()

	tenants, err := h.service.List(ctx)
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": tenants})
}

// Delete removes a tenant
func (h handler) Delete(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Tenant.Handler.Delete")
	defer span.End()

	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
