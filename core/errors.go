package core

import "fmt"

// Every failure in this layer carries a stable machine readable kind next
// to its message so callers can branch without string matching.

type ErrorSyntax struct {
	Message string
}

func (e ErrorSyntax) Error() string {
	return "Syntax Error: " + e.Message
}

func (e ErrorSyntax) Kind() string {
	return "syntax"
}

func NewErrorSyntax(format string, args ...any) ErrorSyntax {
	return ErrorSyntax{Message: fmt.Sprintf(format, args...)}
}

type ErrorValidation struct {
	Message string
}

func (e ErrorValidation) Error() string {
	return "Validation Error: " + e.Message
}

func (e ErrorValidation) Kind() string {
	return "validation"
}

func NewErrorValidation(format string, args ...any) ErrorValidation {
	return ErrorValidation{Message: fmt.Sprintf(format, args...)}
}

const (
	DenyReasonNoGrant      = "no permission for database"
	DenyReasonInsufficient = "insufficient permission"
)

type ErrorAuthorization struct {
	Reason string
	Scope  string
}

func (e ErrorAuthorization) Error() string {
	if e.Scope == "" {
		return "Authorization Error: " + e.Reason
	}
	return fmt.Sprintf("Authorization Error: %s (scope: %s)", e.Reason, e.Scope)
}

func (e ErrorAuthorization) Kind() string {
	return "authorization"
}

func NewErrorAuthorization(reason, scope string) ErrorAuthorization {
	return ErrorAuthorization{Reason: reason, Scope: scope}
}

type ErrorNotFound struct {
	Target string
}

func (e ErrorNotFound) Error() string {
	if e.Target == "" {
		return "Not Found"
	}
	return "Not Found: " + e.Target
}

func (e ErrorNotFound) Kind() string {
	return "not_found"
}

func NewErrorNotFound(target string) ErrorNotFound {
	return ErrorNotFound{Target: target}
}

// ErrorDatabase is a remote store failure. Status and body propagate
// verbatim from upstream; no retry happens in this layer.
type ErrorDatabase struct {
	Status int
	Body   string
}

func (e ErrorDatabase) Error() string {
	return fmt.Sprintf("Database Error: upstream returned %d: %s", e.Status, e.Body)
}

func (e ErrorDatabase) Kind() string {
	return "database"
}

func NewErrorDatabase(status int, body string) ErrorDatabase {
	return ErrorDatabase{Status: status, Body: body}
}

// ErrorTimeout means the transport deadline elapsed. The outcome on the
// remote side is unknown, not "not applied".
type ErrorTimeout struct {
}

func (e ErrorTimeout) Error() string {
	return "Timeout: outcome unknown"
}

func (e ErrorTimeout) Kind() string {
	return "timeout"
}

func NewErrorTimeout() ErrorTimeout {
	return ErrorTimeout{}
}
