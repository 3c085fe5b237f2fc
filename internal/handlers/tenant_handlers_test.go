package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notably/internal/authz"
	"notably/internal/common"
	"notably/internal/middleware"
	"notably/internal/models"
	"notably/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) Upgrade(ctx context.Context, caller common.Principal, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, caller, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type TenantHandlersTestSuite struct {
	suite.Suite
	tenantService *MockTenantService
	authService   services.AuthService
	e             *echo.Echo
	admin         *models.User
	member        *models.User
	adminToken    string
	memberToken   string
	tenantID      uuid.UUID
}

func (suite *TenantHandlersTestSuite) SetupTest() {
	suite.tenantService = new(MockTenantService)
	suite.authService = services.NewAuthService(nil, "test-secret-key")
	suite.tenantID = uuid.New()

	suite.admin = &models.User{ID: uuid.New(), TenantID: suite.tenantID, Email: "admin@acme.test", Role: models.RoleAdmin}
	suite.member = &models.User{ID: uuid.New(), TenantID: suite.tenantID, Email: "user@acme.test", Role: models.RoleMember}

	var err error
	suite.adminToken, err = suite.authService.GenerateToken(suite.admin)
	assert.NoError(suite.T(), err)
	suite.memberToken, err = suite.authService.GenerateToken(suite.member)
	assert.NoError(suite.T(), err)

	h := NewTenantHandlers(suite.tenantService)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	g := e.Group("", middleware.JWTMiddleware(suite.authService))
	g.GET("/tenants/me", h.Me)
	g.POST("/tenants/:slug/upgrade", h.Upgrade,
		middleware.Require(authz.RoleIs(models.RoleAdmin), "Admin access required"))
	suite.e = e
}

func TestTenantHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(TenantHandlersTestSuite))
}

func (suite *TenantHandlersTestSuite) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *TenantHandlersTestSuite) TestUpgrade_AdminSucceeds() {
	upgraded := &models.Tenant{ID: suite.tenantID, Name: "Acme Corp", Slug: "acme", SubscriptionPlan: models.PlanPro}
	suite.tenantService.On("Upgrade", mock.Anything, mock.MatchedBy(func(p common.Principal) bool {
		return p.UserID == suite.admin.ID && p.Role == models.RoleAdmin
	}), "acme").Return(upgraded, nil)

	rec := suite.do(http.MethodPost, "/tenants/acme/upgrade", suite.adminToken)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var got UpgradeResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), "Tenant upgraded to Pro plan successfully", got.Message)
	assert.Equal(suite.T(), models.PlanPro, got.Tenant.SubscriptionPlan)
}

func (suite *TenantHandlersTestSuite) TestUpgrade_MemberForbidden() {
	rec := suite.do(http.MethodPost, "/tenants/acme/upgrade", suite.memberToken)

	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Admin access required"}`, rec.Body.String())
	suite.tenantService.AssertNotCalled(suite.T(), "Upgrade")
}

func (suite *TenantHandlersTestSuite) TestUpgrade_NoToken() {
	rec := suite.do(http.MethodPost, "/tenants/acme/upgrade", "")

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Authentication required"}`, rec.Body.String())
}

func (suite *TenantHandlersTestSuite) TestUpgrade_UnknownSlug() {
	suite.tenantService.On("Upgrade", mock.Anything, mock.Anything, "missing").
		Return(nil, services.ErrTenantNotFound)

	rec := suite.do(http.MethodPost, "/tenants/missing/upgrade", suite.adminToken)

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Tenant not found"}`, rec.Body.String())
}

func (suite *TenantHandlersTestSuite) TestUpgrade_OtherTenant() {
	suite.tenantService.On("Upgrade", mock.Anything, mock.Anything, "globex").
		Return(nil, services.ErrTenantMismatch)

	rec := suite.do(http.MethodPost, "/tenants/globex/upgrade", suite.adminToken)

	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Access denied"}`, rec.Body.String())
}

func (suite *TenantHandlersTestSuite) TestUpgrade_AlreadyPro() {
	suite.tenantService.On("Upgrade", mock.Anything, mock.Anything, "acme").
		Return(nil, services.ErrAlreadyPro)

	rec := suite.do(http.MethodPost, "/tenants/acme/upgrade", suite.adminToken)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Tenant is already on Pro plan"}`, rec.Body.String())
}

func (suite *TenantHandlersTestSuite) TestMe() {
	tenant := &models.Tenant{ID: suite.tenantID, Name: "Acme Corp", Slug: "acme", SubscriptionPlan: models.PlanFree}
	suite.tenantService.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)

	rec := suite.do(http.MethodGet, "/tenants/me", suite.memberToken)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var got models.Tenant
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), "acme", got.Slug)
}
