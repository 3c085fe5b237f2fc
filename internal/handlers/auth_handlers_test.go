package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notably/internal/common"
	"notably/internal/middleware"
	"notably/internal/models"
	"notably/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) GenerateToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*common.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*common.Principal), args.Error(1)
}

func (m *MockAuthService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyPassword(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type AuthHandlersTestSuite struct {
	suite.Suite
	authService *MockAuthService
	userRepo    *MockUserRepository
	e           *echo.Echo
	user        *models.User
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	suite.authService = new(MockAuthService)
	suite.userRepo = new(MockUserRepository)

	suite.user = &models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "admin@acme.test",
		Role:     models.RoleAdmin,
	}

	h := NewAuthHandlers(suite.authService, suite.userRepo)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.POST("/auth/login", h.Login)
	e.GET("/auth/me", h.Me, middleware.JWTMiddleware(suite.authService))
	suite.e = e
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

func (suite *AuthHandlersTestSuite) postLogin(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *AuthHandlersTestSuite) TestLogin_Success() {
	suite.authService.On("Authenticate", mock.Anything, "admin@acme.test", "password").
		Return(suite.user, nil)
	suite.authService.On("GenerateToken", suite.user).Return("signed-token", nil)

	rec := suite.postLogin(`{"email": "admin@acme.test", "password": "password"}`)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var got LoginResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), "signed-token", got.Token)
	assert.Equal(suite.T(), suite.user.Email, got.User.Email)
}

func (suite *AuthHandlersTestSuite) TestLogin_WrongPassword() {
	suite.authService.On("Authenticate", mock.Anything, "admin@acme.test", "nope").
		Return(nil, services.ErrInvalidCredentials)

	rec := suite.postLogin(`{"email": "admin@acme.test", "password": "nope"}`)

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Invalid email or password"}`, rec.Body.String())
}

func (suite *AuthHandlersTestSuite) TestLogin_UnknownEmail() {
	suite.authService.On("Authenticate", mock.Anything, "nobody@acme.test", "password").
		Return(nil, services.ErrInvalidCredentials)

	rec := suite.postLogin(`{"email": "nobody@acme.test", "password": "password"}`)

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Invalid email or password"}`, rec.Body.String())
}

func (suite *AuthHandlersTestSuite) TestLogin_MissingFields() {
	rec := suite.postLogin(`{"email": "admin@acme.test"}`)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "Email and password are required"}`, rec.Body.String())
	suite.authService.AssertNotCalled(suite.T(), "Authenticate")
}

func (suite *AuthHandlersTestSuite) TestMe() {
	principal := &common.Principal{
		UserID:   suite.user.ID,
		Email:    suite.user.Email,
		Role:     suite.user.Role,
		TenantID: suite.user.TenantID,
	}
	suite.authService.On("ValidateToken", "valid-token").Return(principal, nil)
	suite.userRepo.On("GetByID", mock.Anything, suite.user.TenantID, suite.user.ID).
		Return(suite.user, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var got models.User
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), suite.user.Email, got.Email)
	// The password hash never leaves the server.
	assert.NotContains(suite.T(), rec.Body.String(), "password_hash")
}

func (suite *AuthHandlersTestSuite) TestMe_MissingRow() {
	principal := &common.Principal{
		UserID:   suite.user.ID,
		Email:    suite.user.Email,
		Role:     suite.user.Role,
		TenantID: suite.user.TenantID,
	}
	suite.authService.On("ValidateToken", "valid-token").Return(principal, nil)
	suite.userRepo.On("GetByID", mock.Anything, suite.user.TenantID, suite.user.ID).
		Return(nil, pgx.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.JSONEq(suite.T(), `{"error": "User not found"}`, rec.Body.String())
}
