package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_client "github.com/glyphdb/gateway/client/mock"
	"github.com/glyphdb/gateway/core"
	mock_permission "github.com/glyphdb/gateway/x/permission/mock"
	mock_tenant "github.com/glyphdb/gateway/x/tenant/mock"
)

type fixture struct {
	client     *mock_client.MockClient
	permission *mock_permission.MockService
	tenant     *mock_tenant.MockService
	service    Service
}

func setup(t *testing.T) (*fixture, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	f := &fixture{
		client:     mock_client.NewMockClient(ctrl),
		permission: mock_permission.NewMockService(ctrl),
		tenant:     mock_tenant.NewMockService(ctrl),
	}
	f.service = NewService(f.client, f.permission, f.tenant)
	return f, ctrl
}

func TestExecuteSuccess(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	canonical := "set(structure)\nvalues(\"acme\", {\"plan\":\"pro\"})\non(main.core.subscription)"

	f.permission.EXPECT().
		Test(gomock.Any(), gomock.Any(), "bob@example.com", gomock.Any()).
		Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	f.client.EXPECT().
		Execute(gomock.Any(), canonical, "system-token").
		Return(json.RawMessage(`{"written":1}`), nil)

	envelope, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Token:     "caller-token",
		Set:       core.PermissionSet{},
		Text:      canonical,
	})

	assert.NoError(t, err)
	assert.Equal(t, core.OpSet, envelope.Operation)
	assert.Equal(t, "main.core.subscription", envelope.Path)
	assert.JSONEq(t, `{"written":1}`, string(envelope.Result))
	assert.GreaterOrEqual(t, envelope.TookMs, int64(0))
}

func TestExecuteNormalizesBeforeDispatch(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	// the dispatched text is the canonical build, not the raw input
	f.client.EXPECT().
		Execute(gomock.Any(), "view(enum)\non(main.core)", "system-token").
		Return(json.RawMessage(`[]`), nil)

	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Set:       core.PermissionSet{},
		Text:      "\n  view(enum)  \n\n  on(main.core)  \n",
	})
	assert.NoError(t, err)
}

func TestExecuteSyntaxErrorNeverDispatches(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	// no EXPECT on client or tenant: any call would fail the test
	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Set:       core.PermissionSet{},
		Text:      "explode(enum)\non(main)",
	})
	assert.IsType(t, core.ErrorSyntax{}, err)
}

func TestExecuteDenyNeverDispatches(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().
		Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.NewErrorAuthorization(core.DenyReasonInsufficient, "main"))

	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Set: core.PermissionSet{
			"main": {Database: "main", Level: core.LevelWrite},
		},
		Text: "drop(structure)\non(main.core.subscription)",
	})
	assert.IsType(t, core.ErrorAuthorization{}, err)
}

func TestExecuteUnknownTenant(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "ghost").Return("", core.NewErrorNotFound("tenant ghost"))

	// the tenant must fail resolution before any transport call
	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "ghost",
		Requester: "bob@example.com",
		Set:       core.PermissionSet{"main": {Database: "main", Level: core.LevelRead}},
		Text:      "view(enum)\non(main)",
	})
	assert.IsType(t, core.ErrorNotFound{}, err)
}

func TestExecuteTransportFailure(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	f.client.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, core.NewErrorDatabase(500, "engine fault"))

	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Set:       core.PermissionSet{"main": {Database: "main", Level: core.LevelRead}},
		Text:      "view(enum)\non(main)",
	})
	if assert.IsType(t, core.ErrorDatabase{}, err) {
		assert.Equal(t, 500, err.(core.ErrorDatabase).Status)
	}
}

func TestExecuteTimeoutIsUnknownOutcome(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	f.client.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, core.NewErrorTimeout())

	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "bob@example.com",
		Set:       core.PermissionSet{"main": {Database: "main", Level: core.LevelWrite}},
		Text:      "set(enum)\nvalues(\"x\")\non(main.core.flags)",
	})
	assert.IsType(t, core.ErrorTimeout{}, err)
}

func TestExecuteSelfServiceUsesCallerToken(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), "a.b@x.com", gomock.Any()).Return(nil)

	// provisioning rides on the system token, the command on the caller's
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	f.client.EXPECT().
		Execute(gomock.Any(), "set(structure)\nvalues(\"a_b_at_x_com\")\non(user-data)", "system-token").
		Return(json.RawMessage(`{}`), nil)
	f.client.EXPECT().
		Execute(gomock.Any(), "set(structure)\nvalues({\"text\":\"hi\"})\non(user-data.a_b_at_x_com.notes)", "caller-token").
		Return(json.RawMessage(`{"written":1}`), nil)

	envelope, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "a.b@x.com",
		Token:     "caller-token",
		Set:       core.PermissionSet{},
		Text:      "set(structure)\nvalues({\"text\":\"hi\"})\non(user-data.a_b_at_x_com.notes)",
	})
	assert.NoError(t, err)
	assert.Equal(t, "user-data.a_b_at_x_com.notes", envelope.Path)
}

func TestExecuteProvisioningFailureIsNotFatal(t *testing.T) {
	f, ctrl := setup(t)
	defer ctrl.Finish()

	f.permission.EXPECT().Test(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.tenant.EXPECT().SystemToken(gomock.Any(), "acme").Return("system-token", nil)
	f.client.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "system-token").
		Return(nil, core.NewErrorDatabase(500, "engine fault"))
	f.client.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "caller-token").
		Return(json.RawMessage(`{}`), nil)

	_, err := f.service.Execute(context.Background(), Request{
		Tenant:    "acme",
		Requester: "a.b@x.com",
		Token:     "caller-token",
		Set:       core.PermissionSet{},
		Text:      "view(enum)\non(user-data.a_b_at_x_com.notes)",
	})
	assert.NoError(t, err)
}
