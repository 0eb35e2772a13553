//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mock/service.go
package permission

import (
	"context"
	"net/mail"
	"time"

	"github.com/glyphdb/gateway/core"
)

// Service is the interface for permission service
type Service interface {
	Grant(ctx context.Context, perm core.Permission) (core.Permission, error)
	Revoke(ctx context.Context, subject string, target core.Path) error
	List(ctx context.Context, subject string) ([]core.PermissionRecord, error)
	GetSet(ctx context.Context, subject string) (core.PermissionSet, error)
	Test(ctx context.Context, cmd core.Command, requester string, set core.PermissionSet) error
}

type service struct {
	repository Repository
}

// NewService creates a new permission service
func NewService(repository Repository) Service {
	return &service{repository}
}

// Grant validates and upserts a grant. Re-granting the same subject and
// scope overwrites in place.
func (s *service) Grant(ctx context.Context, perm core.Permission) (core.Permission, error) {
	ctx, span := tracer.Start(ctx, "Permission.Service.Grant")
	defer span.End()

	if err := validate(perm); err != nil {
		span.RecordError(err)
		return core.Permission{}, err
	}

	return s.repository.Upsert(ctx, perm)
}

// Revoke expires a grant in place.
func (s *service) Revoke(ctx context.Context, subject string, target core.Path) error {
	ctx, span := tracer.Start(ctx, "Permission.Service.Revoke")
	defer span.End()

	return s.repository.Revoke(ctx, subject, target)
}

// List returns a subject's grants in the external record shape.
func (s *service) List(ctx context.Context, subject string) ([]core.PermissionRecord, error) {
	ctx, span := tracer.Start(ctx, "Permission.Service.List")
	defer span.End()

	perms, err := s.repository.GetBySubject(ctx, subject)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	records := make([]core.PermissionRecord, 0, len(perms))
	for _, perm := range perms {
		records = append(records, perm.Record())
	}
	return records, nil
}

// GetSet returns the subject's currently active grants keyed by scope.
func (s *service) GetSet(ctx context.Context, subject string) (core.PermissionSet, error) {
	ctx, span := tracer.Start(ctx, "Permission.Service.GetSet")
	defer span.End()

	perms, err := s.repository.GetBySubject(ctx, subject)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := time.Now()
	set := core.PermissionSet{}
	for _, perm := range perms {
		if perm.IsActive(now) {
			set[perm.Scope()] = perm
		}
	}
	return set, nil
}

// Test decides whether the requester may run the command. It is the single
// resolver: every permission check in the gateway funnels through here.
// A nil return means ALLOW; a core.ErrorAuthorization carries the deny
// reason.
func (s *service) Test(ctx context.Context, cmd core.Command, requester string, set core.PermissionSet) error {
	_, span := tracer.Start(ctx, "Permission.Service.Test")
	defer span.End()

	required := core.RequiredLevel(cmd.Op)

	// Global scope commands carry no tenant data and are always allowed.
	if cmd.Target.IsGlobal() {
		return nil
	}

	// Self-service bypass: a caller always has full access to their own
	// derived namespace, with or without an explicit grant.
	personal := core.PersonalNamespace(requester)
	if cmd.Target.Database == personal || cmd.Target.Namespace == personal {
		return nil
	}

	now := time.Now()
	for _, scope := range candidateScopes(cmd.Target) {
		perm, ok := set.Get(scope)
		if !ok {
			continue
		}
		if perm.Allows(required, now) {
			return nil
		}
		return core.NewErrorAuthorization(core.DenyReasonInsufficient, scope)
	}

	return core.NewErrorAuthorization(core.DenyReasonNoGrant, cmd.Target.Database)
}

// candidateScopes lists the scopes a grant could match, most specific
// first.
func candidateScopes(target core.Path) []string {
	scopes := []string{}
	if target.Namespace != "" && target.Entity != "" {
		scopes = append(scopes, target.Database+"."+target.Namespace+"."+target.Entity)
	}
	if target.Namespace != "" {
		scopes = append(scopes, target.Database+"."+target.Namespace)
	}
	scopes = append(scopes, target.Database)
	return scopes
}

func validate(perm core.Permission) error {
	if _, err := mail.ParseAddress(perm.Subject); err != nil {
		return core.NewErrorValidation("invalid subject address: %s", perm.Subject)
	}
	if perm.Database == "" {
		return core.NewErrorValidation("database must not be empty")
	}
	if perm.Level < core.LevelRead || perm.Level > core.LevelAdmin {
		return core.NewErrorValidation("level must be 1, 2 or 3, got %d", perm.Level)
	}
	if perm.ExpiresAt != nil && !perm.ExpiresAt.After(time.Now()) {
		return core.NewErrorValidation("expiry must be in the future")
	}
	return nil
}
