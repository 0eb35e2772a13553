// Package auth consumes already-issued caller credentials. Token issuance
// happens elsewhere; this package only validates and loads the caller's
// grants once per request.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glyphdb/gateway/core"
	"github.com/glyphdb/gateway/util"
	"github.com/glyphdb/gateway/x/permission"
)

var tracer = otel.Tracer("auth")

type Principal int

const (
	ISADMIN Principal = iota
	ISKNOWN
)

// Service is the interface for auth service
type Service interface {
	IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc
	Restrict(principal Principal) echo.MiddlewareFunc
}

type service struct {
	config     util.Config
	permission permission.Service
}

// NewService creates a new auth service
func NewService(config util.Config, permission permission.Service) Service {
	return &service{config, permission}
}

// IdentifyRequester validates the bearer credential and loads the caller's
// permission set into the request context. Requests without a valid
// credential pass through unidentified; Restrict decides what they may do.
func (s *service) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Service.IdentifyRequester")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 || split[0] != "Bearer" {
				span.RecordError(echo.ErrUnauthorized)
				goto skip
			}

			{
				token := split[1]
				email, err := s.validate(token)
				if err != nil {
					span.RecordError(err)
					goto skip
				}

				set, err := s.permission.GetSet(ctx, email)
				if err != nil {
					span.RecordError(err)
					goto skip
				}

				c.Set(core.RequesterEmailCtxKey, email)
				c.Set(core.RequesterTokenCtxKey, token)
				c.Set(core.PermissionSetCtxKey, set)
				span.SetAttributes(attribute.String("Requester", email))
			}
		}
	skip:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// Restrict rejects requests whose requester does not satisfy the
// principal.
func (s *service) Restrict(principal Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, ok := c.Get(core.RequesterEmailCtxKey).(string)
			if !ok || email == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status": "error", "message": "authentication required",
				})
			}

			if principal == ISADMIN && !s.config.IsAdmin(email) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"status": "error", "message": "you are not authorized to perform this action",
				})
			}

			return next(c)
		}
	}
}

func (s *service) validate(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.config.Gateway.JwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
