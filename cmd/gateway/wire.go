//go:build wireinject

package main

import (
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/glyphdb/gateway/client"
	"github.com/glyphdb/gateway/util"
	"github.com/glyphdb/gateway/x/auth"
	"github.com/glyphdb/gateway/x/gateway"
	"github.com/glyphdb/gateway/x/permission"
	"github.com/glyphdb/gateway/x/tenant"
)

var permissionHandlerProvider = wire.NewSet(permission.NewHandler, permission.NewService, permission.NewRepository)
var gatewayHandlerProvider = wire.NewSet(gateway.NewHandler, gateway.NewService, permission.NewService, permission.NewRepository)

func SetupPermissionHandler(db *gorm.DB, rdb *redis.Client) permission.Handler {
	wire.Build(permissionHandlerProvider)
	return nil
}

func SetupTenantService(db *gorm.DB, interval time.Duration) tenant.Service {
	wire.Build(tenant.NewService, tenant.NewRepository)
	return nil
}

func SetupTenantHandler(service tenant.Service) tenant.Handler {
	wire.Build(tenant.NewHandler)
	return nil
}

func SetupGatewayHandler(storeClient client.Client, tenantService tenant.Service, db *gorm.DB, rdb *redis.Client) gateway.Handler {
	wire.Build(gatewayHandlerProvider)
	return nil
}

func SetupAuthService(db *gorm.DB, rdb *redis.Client, config util.Config) auth.Service {
	wire.Build(auth.NewService, permission.NewService, permission.NewRepository)
	return nil
}
