//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mock/service.go
package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glyphdb/gateway/core"
)

// Service routes tenant credentials. It keeps a whole tenant-to-token table
// in memory and swaps it wholesale on refresh, so concurrent readers always
// observe either the fully old or the fully new mapping.
type Service interface {
	SystemToken(ctx context.Context, tenant string) (string, error)
	Refresh(ctx context.Context) error
	Boot(ctx context.Context)

	Upsert(ctx context.Context, tenant core.Tenant) (core.Tenant, error)
	List(ctx context.Context) ([]core.Tenant, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repository Repository
	interval   time.Duration

	mutex sync.RWMutex
	table map[string]string
}

// NewService creates a new tenant service. The table starts empty; call
// Boot or Refresh before serving.
func NewService(repository Repository, interval time.Duration) Service {
	return &service{
		repository: repository,
		interval:   interval,
		table:      map[string]string{},
	}
}

// SystemToken returns the tenant-wide credential. An unresolvable tenant
// fails with ErrorNotFound before any further processing happens.
func (s *service) SystemToken(ctx context.Context, tenant string) (string, error) {
	_, span := tracer.Start(ctx, "Tenant.Service.SystemToken")
	defer span.End()

	s.mutex.RLock()
	token, ok := s.table[tenant]
	s.mutex.RUnlock()

	if !ok {
		return "", core.NewErrorNotFound("tenant " + tenant)
	}
	return token, nil
}

// Refresh reloads the whole table from the repository and swaps it in
// atomically. A partial table is never observable.
func (s *service) Refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Tenant.Service.Refresh")
	defer span.End()

	tenants, err := s.repository.GetAll(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	next := make(map[string]string, len(tenants))
	for _, tenant := range tenants {
		next[tenant.ID] = tenant.Token
	}

	s.mutex.Lock()
	s.table = next
	s.mutex.Unlock()

	return nil
}

// Boot loads the table and keeps refreshing it on the configured interval
// until the context is cancelled.
func (s *service) Boot(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		slog.ErrorContext(
			ctx, fmt.Sprintf("initial tenant table load failed: %s", err.Error()),
			slog.String("module", "tenant"),
		)
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					slog.ErrorContext(
						ctx, fmt.Sprintf("tenant table refresh failed: %s", err.Error()),
						slog.String("module", "tenant"),
					)
				}
			}
		}
	}()
}

// Upsert registers a tenant and makes it routable immediately.
func (s *service) Upsert(ctx context.Context, tenant core.Tenant) (core.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Service.Upsert")
	defer span.End()

	created, err := s.repository.Upsert(ctx, tenant)
	if err != nil {
		span.RecordError(err)
		return core.Tenant{}, err
	}

	return created, s.Refresh(ctx)
}

// List returns every registered tenant
func (s *service) List(ctx context.Context) ([]core.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Service.List")
	defer span.End()

	return s.repository.GetAll(ctx)
}

// Delete removes a tenant and drops it from the table.
func (s *service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Tenant.Service.Delete")
	defer span.End()

	if err := s.repository.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	return s.Refresh(ctx)
}
