//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package permission

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/glyphdb/gateway/core"
)

const cacheTTL = 5 * time.Minute

// Repository is the interface for permission repository
type Repository interface {
	Upsert(ctx context.Context, perm core.Permission) (core.Permission, error)
	GetBySubject(ctx context.Context, subject string) ([]core.Permission, error)
	Revoke(ctx context.Context, subject string, target core.Path) error
}

type repository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewRepository creates a new permission repository
func NewRepository(db *gorm.DB, rdb *redis.Client) Repository {
	return &repository{db, rdb}
}

// Upsert writes a grant, overwriting any existing grant for the same
// subject and scope.
func (r *repository) Upsert(ctx context.Context, perm core.Permission) (core.Permission, error) {
	ctx, span := tracer.Start(ctx, "Permission.Repository.Upsert")
	defer span.End()

	if perm.GrantedAt.IsZero() {
		perm.GrantedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Save(&perm).Error; err != nil {
		span.RecordError(err)
		return core.Permission{}, errors.Wrap(err, "failed to save permission")
	}

	r.invalidate(ctx, perm.Subject)

	return perm, nil
}

// GetBySubject returns all grants held by a subject, consulting the cache
// first.
func (r *repository) GetBySubject(ctx context.Context, subject string) ([]core.Permission, error) {
	ctx, span := tracer.Start(ctx, "Permission.Repository.GetBySubject")
	defer span.End()

	cached, err := r.rdb.Get(ctx, cacheKey(subject)).Result()
	if err == nil {
		var perms []core.Permission
		if err := json.Unmarshal([]byte(cached), &perms); err == nil {
			return perms, nil
		}
	}

	var perms []core.Permission
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).Find(&perms).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to load permissions")
	}

	if encoded, err := json.Marshal(perms); err == nil {
		r.rdb.Set(ctx, cacheKey(subject), encoded, cacheTTL)
	}

	return perms, nil
}

// Revoke marks a grant inactive by expiring it in place. The row stays.
func (r *repository) Revoke(ctx context.Context, subject string, target core.Path) error {
	ctx, span := tracer.Start(ctx, "Permission.Repository.Revoke")
	defer span.End()

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&core.Permission{}).
		Where("subject = ? AND database = ? AND namespace = ? AND entity = ?",
			subject, target.Database, target.Namespace, target.Entity).
		Update("expires_at", now)
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrap(result.Error, "failed to expire permission")
	}
	if result.RowsAffected == 0 {
		return core.NewErrorNotFound("permission " + target.String())
	}

	r.invalidate(ctx, subject)

	return nil
}

func (r *repository) invalidate(ctx context.Context, subject string) {
	r.rdb.Del(ctx, cacheKey(subject))
}

func cacheKey(subject string) string {
	return "permset:" + subject
}
