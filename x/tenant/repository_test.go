package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glyphdb/gateway/core"
	"github.com/glyphdb/gateway/internal/testutil"
)

func TestRepository(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	repo := NewRepository(db)

	_, err := repo.Upsert(ctx, core.Tenant{ID: "acme", Token: "token-a"})
	assert.NoError(t, err)

	_, err = repo.Upsert(ctx, core.Tenant{ID: "globex", Token: "token-b"})
	assert.NoError(t, err)

	found, err := repo.Get(ctx, "acme")
	if assert.NoError(t, err) {
		assert.Equal(t, "token-a", found.Token)
	}

	// upsert replaces the credential for an existing tenant
	_, err = repo.Upsert(ctx, core.Tenant{ID: "acme", Token: "token-a2"})
	assert.NoError(t, err)

	found, err = repo.Get(ctx, "acme")
	if assert.NoError(t, err) {
		assert.Equal(t, "token-a2", found.Token)
	}

	all, err := repo.GetAll(ctx)
	if assert.NoError(t, err) {
		assert.Len(t, all, 2)
	}

	err = repo.Delete(ctx, "globex")
	assert.NoError(t, err)

	_, err = repo.Get(ctx, "globex")
	assert.IsType(t, core.ErrorNotFound{}, err)

	all, err = repo.GetAll(ctx)
	if assert.NoError(t, err) {
		assert.Len(t, all, 1)
	}
}
