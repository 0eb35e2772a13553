package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/glyphdb/gateway/core"
	mock_tenant "github.com/glyphdb/gateway/x/tenant/mock"
)

func TestSystemTokenUnknownTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_tenant.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetAll(gomock.Any()).Return([]core.Tenant{
		{ID: "acme", Token: "acme-token"},
	}, nil)

	svc := NewService(mockRepo, time.Minute)
	err := svc.Refresh(context.Background())
	assert.NoError(t, err)

	_, err = svc.SystemToken(context.Background(), "ghost")
	assert.IsType(t, core.ErrorNotFound{}, err)
}

func TestSystemTokenBeforeLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewService(mock_tenant.NewMockRepository(ctrl), time.Minute)
	_, err := svc.SystemToken(context.Background(), "acme")
	assert.IsType(t, core.ErrorNotFound{}, err)
}

func TestRefreshSwapsWholeTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_tenant.NewMockRepository(ctrl)
	first := mockRepo.EXPECT().GetAll(gomock.Any()).Return([]core.Tenant{
		{ID: "acme", Token: "acme-token"},
		{ID: "initech", Token: "initech-token"},
	}, nil)
	mockRepo.EXPECT().GetAll(gomock.Any()).Return([]core.Tenant{
		{ID: "initech", Token: "initech-token-v2"},
	}, nil).After(first)

	svc := NewService(mockRepo, time.Minute)
	assert.NoError(t, svc.Refresh(context.Background()))

	token, err := svc.SystemToken(context.Background(), "acme")
	assert.NoError(t, err)
	assert.Equal(t, "acme-token", token)

	assert.NoError(t, svc.Refresh(context.Background()))

	// acme vanished with the swap, initech rotated
	_, err = svc.SystemToken(context.Background(), "acme")
	assert.IsType(t, core.ErrorNotFound{}, err)

	token, err = svc.SystemToken(context.Background(), "initech")
	assert.NoError(t, err)
	assert.Equal(t, "initech-token-v2", token)
}

func TestConcurrentReadersDuringRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mock_tenant.NewMockRepository(ctrl)
	mockRepo.EXPECT().GetAll(gomock.Any()).Return([]core.Tenant{
		{ID: "acme", Token: "acme-token"},
	}, nil).AnyTimes()

	svc := NewService(mockRepo, time.Minute)
	assert.NoError(t, svc.Refresh(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				token, err := svc.SystemToken(context.Background(), "acme")
				assert.NoError(t, err)
				assert.Equal(t, "acme-token", token)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, svc.Refresh(context.Background()))
			}
		}()
	}
	wg.Wait()
}

func TestUpsertMakesTenantRoutable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	newTenant := core.Tenant{ID: "hooli", Token: "hooli-token"}

	mockRepo := mock_tenant.NewMockRepository(ctrl)
	mockRepo.EXPECT().Upsert(gomock.Any(), newTenant).Return(newTenant, nil)
	mockRepo.EXPECT().GetAll(gomock.Any()).Return([]core.Tenant{newTenant}, nil)

	svc := NewService(mockRepo, time.Minute)
	_, err := svc.Upsert(context.Background(), newTenant)
	assert.NoError(t, err)

	token, err := svc.SystemToken(context.Background(), "hooli")
	assert.NoError(t, err)
	assert.Equal(t, "hooli-token", token)
}
