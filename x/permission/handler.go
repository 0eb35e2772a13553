// Package permission owns access grants: storage, validation, and the
// single resolver every command check funnels through.
package permission

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/glyphdb/gateway/core"
)

var tracer = otel.Tracer("permission")

// Handler is the permission handler
type Handler interface {
	Grant(c echo.Context) error
	Revoke(c echo.Context) error
	List(c echo.Context) error
}

type handler struct {
	service Service
}

// NewHandler creates a new permission handler
func NewHandler(service Service) Handler {
	return &handler{service}
}

type grantRequest struct {
	Subject   string `json:"subject"`
	Scope     string `json:"scope"`
	Level     int    `json:"level"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Grant creates or overwrites a grant
func (h handler) Grant(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Permission.Handler.Grant")
	defer span.End()

	var request grantRequest
	if err := c.Bind(&request); err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}

	target := core.ParsePath(request.Scope)
	perm := core.Permission{
		Subject:   request.Subject,
		Database:  target.Database,
		Namespace: target.Namespace,
		Entity:    target.Entity,
		Level:     request.Level,
		GrantedBy: c.Get(core.RequesterEmailCtxKey).(string),
	}
	if request.ExpiresAt != "" {
		expiry, err := parseTimestamp(request.ExpiresAt)
		if err != nil {
			span.RecordError(err)
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"status": "error", "message": err.Error()})
		}
		perm.ExpiresAt = &expiry
	}

	created, err := h.service.Grant(ctx, perm)
	if err != nil {
		span.RecordError(err)
		if _, ok := err.(core.ErrorValidation); ok {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"status": "error", "message": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": created.Record()})
}

// Revoke expires a grant
func (h handler) Revoke(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Permission.Handler.Revoke")
	defer span.End()

	subject := c.Param("subject")
	target := core.ParsePath(c.Param("scope"))

	if err := h.service.Revoke(ctx, subject, target); err != nil {
		span.RecordError(err)
		if _, ok := err.(core.ErrorNotFound); ok {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// List returns a subject's grants in the external record shape
func (h handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Permission.Handler.List")
	defer span.End()

	records, err := h.service.List(ctx, c.Param("subject"))
	if err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": records})
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, core.NewErrorValidation("expiry is not a valid timestamp: %s", value)
	}
	return ts, nil
}
