package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/glyphdb/gateway/core"
	"github.com/glyphdb/gateway/util"
	mock_permission "github.com/glyphdb/gateway/x/permission/mock"
)

const testSecret = "unit-test-secret"

func testConfig() util.Config {
	return util.Config{
		Gateway: util.Gateway{
			JwtSecret: testSecret,
			Admins:    []string{"root@example.com"},
		},
	}
}

func signToken(t *testing.T, subject string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: subject,
	}).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func invoke(svc Service, header string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if header != "" {
		req.Header.Set("authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := svc.IdentifyRequester(func(c echo.Context) error { return nil })(c)
	return c, err
}

func TestIdentifyRequester(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	set := core.PermissionSet{
		"main": {Subject: "bob@example.com", Database: "main", Level: core.LevelWrite},
	}

	mockPermission := mock_permission.NewMockService(ctrl)
	mockPermission.EXPECT().GetSet(gomock.Any(), "bob@example.com").Return(set, nil)

	svc := NewService(testConfig(), mockPermission)
	token := signToken(t, "bob@example.com")

	c, err := invoke(svc, "Bearer "+token)
	assert.NoError(t, err)
	assert.Equal(t, "bob@example.com", c.Get(core.RequesterEmailCtxKey))
	assert.Equal(t, token, c.Get(core.RequesterTokenCtxKey))
	assert.Equal(t, set, c.Get(core.PermissionSetCtxKey))
}

func TestIdentifyRequesterBadToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewService(testConfig(), mock_permission.NewMockService(ctrl))

	c, err := invoke(svc, "Bearer not-a-jwt")
	assert.NoError(t, err)
	assert.Nil(t, c.Get(core.RequesterEmailCtxKey))
}

func TestIdentifyRequesterNoHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewService(testConfig(), mock_permission.NewMockService(ctrl))

	c, err := invoke(svc, "")
	assert.NoError(t, err)
	assert.Nil(t, c.Get(core.RequesterEmailCtxKey))
}

func TestRestrict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewService(testConfig(), mock_permission.NewMockService(ctrl))
	e := echo.New()

	run := func(principal Principal, email string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if email != "" {
			c.Set(core.RequesterEmailCtxKey, email)
		}
		handler := svc.Restrict(principal)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, run(ISKNOWN, ""))
	assert.Equal(t, http.StatusOK, run(ISKNOWN, "bob@example.com"))
	assert.Equal(t, http.StatusForbidden, run(ISADMIN, "bob@example.com"))
	assert.Equal(t, http.StatusOK, run(ISADMIN, "root@example.com"))
}
