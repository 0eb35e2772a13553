package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/glyphdb/gateway/client"
	"github.com/glyphdb/gateway/core"
	"github.com/glyphdb/gateway/x/grammar"
	"github.com/glyphdb/gateway/x/permission"
	"github.com/glyphdb/gateway/x/tenant"
)

// Service is the single choke point for every command: parse, permission
// check, dispatch, normalize. Unauthorized or malformed input never
// reaches the transport.
type Service interface {
	Execute(ctx context.Context, req Request) (Envelope, error)
}

type service struct {
	client     client.Client
	permission permission.Service
	tenant     tenant.Service

	provisioned sync.Map // "<database>.<namespace>" -> struct{}
}

// NewService creates a new gateway service
func NewService(client client.Client, permission permission.Service, tenant tenant.Service) Service {
	return &service{
		client:     client,
		permission: permission,
		tenant:     tenant,
	}
}

// Execute runs one invocation through the state machine
// RECEIVED -> PARSED -> PERMISSION_CHECKED -> DISPATCHED -> COMPLETED/FAILED.
func (s *service) Execute(ctx context.Context, req Request) (Envelope, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Service.Execute")
	defer span.End()

	execID := xid.New().String()
	span.SetAttributes(attribute.String("execID", execID))
	s.transition(ctx, execID, StateReceived)

	cmd, err := grammar.Parse(req.Text)
	if err != nil {
		span.RecordError(err)
		s.transition(ctx, execID, StateFailed)
		return Envelope{}, err
	}
	s.transition(ctx, execID, StateParsed)

	// The permission check completes locally before any transport call, so
	// a denied command can never produce a remote side effect.
	if err := s.permission.Test(ctx, cmd, req.Requester, req.Set); err != nil {
		span.RecordError(err)
		s.transition(ctx, execID, StateFailed)
		return Envelope{}, err
	}
	s.transition(ctx, execID, StatePermissionChecked)

	token, err := s.selectToken(ctx, cmd, req)
	if err != nil {
		span.RecordError(err)
		s.transition(ctx, execID, StateFailed)
		return Envelope{}, err
	}

	text, err := grammar.Build(cmd)
	if err != nil {
		span.RecordError(err)
		s.transition(ctx, execID, StateFailed)
		return Envelope{}, err
	}

	start := time.Now()
	result, err := s.client.Execute(ctx, text, token)
	took := time.Since(start)
	s.transition(ctx, execID, StateDispatched)
	if err != nil {
		span.RecordError(err)
		s.transition(ctx, execID, StateFailed)
		return Envelope{}, err
	}
	s.transition(ctx, execID, StateCompleted)

	return Envelope{
		Operation: cmd.Op,
		Path:      cmd.Target.String(),
		Result:    result,
		TookMs:    took.Milliseconds(),
	}, nil
}

// selectToken picks the credential mode. Commands inside the requester's
// own namespace ride on the caller's credential, which the store
// re-validates per caller. Everything else uses the tenant system token.
func (s *service) selectToken(ctx context.Context, cmd core.Command, req Request) (string, error) {
	personal := core.PersonalNamespace(req.Requester)

	if cmd.Target.Database == personal {
		return req.Token, nil
	}
	if cmd.Target.Namespace == personal {
		s.ensureNamespace(ctx, req.Tenant, cmd.Target.Database, personal)
		return req.Token, nil
	}

	return s.tenant.SystemToken(ctx, req.Tenant)
}

// ensureNamespace lazily provisions the personal namespace with the tenant
// system token. This is best effort auxiliary work: a failure here logs
// and the primary operation continues.
func (s *service) ensureNamespace(ctx context.Context, tenantID, database, namespace string) {
	key := database + "." + namespace
	if _, done := s.provisioned.Load(key); done {
		return
	}

	token, err := s.tenant.SystemToken(ctx, tenantID)
	if err != nil {
		slog.WarnContext(
			ctx, fmt.Sprintf("skipping namespace provisioning: %s", err.Error()),
			slog.String("module", "gateway"),
		)
		return
	}

	text, err := grammar.Build(core.Command{
		Op:     core.OpSet,
		Type:   core.TypeStructure,
		Values: []any{namespace},
		Target: core.Path{Database: database},
	})
	if err != nil {
		return
	}

	if _, err := s.client.Execute(ctx, text, token); err != nil {
		slog.WarnContext(
			ctx, fmt.Sprintf("namespace provisioning failed for %s: %s", key, err.Error()),
			slog.String("module", "gateway"),
		)
		return
	}

	s.provisioned.Store(key, struct{}{})
}

func (s *service) transition(ctx context.Context, execID string, state State) {
	slog.DebugContext(
		ctx, fmt.Sprintf("execution %s: %s", execID, state),
		slog.String("module", "gateway"),
	)
}
