//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package tenant

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/glyphdb/gateway/core"
)

// Repository is the interface for tenant repository
type Repository interface {
	GetAll(ctx context.Context) ([]core.Tenant, error)
	Get(ctx context.Context, id string) (core.Tenant, error)
	Upsert(ctx context.Context, tenant core.Tenant) (core.Tenant, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new tenant repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

// GetAll returns every registered tenant
func (r *repository) GetAll(ctx context.Context) ([]core.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Repository.GetAll")
	defer span.End()

	var tenants []core.Tenant
	if err := r.db.WithContext(ctx).Find(&tenants).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to load tenants")
	}
	return tenants, nil
}

// Get returns a tenant by name
func (r *repository) Get(ctx context.Context, id string) (core.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Repository.Get")
	defer span.End()

	var tenant core.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.Tenant{}, core.NewErrorNotFound("tenant " + id)
		}
		span.RecordError(err)
		return core.Tenant{}, err
	}
	return tenant, nil
}

// Upsert registers or updates a tenant
func (r *repository) Upsert(ctx context.Context, tenant core.Tenant) (core.Tenant, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Repository.Upsert")
	defer span.End()

	if err := r.db.WithContext(ctx).Save(&tenant).Error; err != nil {
		span.RecordError(err)
		return core.Tenant{}, errors.Wrap(err, "failed to save tenant")
	}
	return tenant, nil
}

// Delete removes a tenant
func (r *repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Tenant.Repository.Delete")
	defer span.End()

	return r.db.WithContext(ctx).Delete(&core.Tenant{}, "id = ?", id).Error
}
