package repositories

import (
	"context"
	"testing"
	"time"

	"notably/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UserRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     UserRepository
	tenantID uuid.UUID
	userID   uuid.UUID
	ctx      context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewUserRepo(mock)
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (suite *UserRepoTestSuite) TestGetByEmail() {
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, email, password_hash, role, tenant_id, created_at`).
		WithArgs("admin@acme.test").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "role", "tenant_id", "created_at"}).
			AddRow(suite.userID, "admin@acme.test", "$2a$10$hash", models.RoleAdmin, suite.tenantID, now))

	user, err := suite.repo.GetByEmail(suite.ctx, "admin@acme.test")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID, user.ID)
	assert.Equal(suite.T(), models.RoleAdmin, user.Role)
	assert.Equal(suite.T(), suite.tenantID, user.TenantID)
}

func (suite *UserRepoTestSuite) TestGetByEmail_Unknown() {
	suite.mock.ExpectQuery(`SELECT id, email, password_hash, role, tenant_id, created_at`).
		WithArgs("nobody@acme.test").
		WillReturnError(pgx.ErrNoRows)

	user, err := suite.repo.GetByEmail(suite.ctx, "nobody@acme.test")
	assert.Nil(suite.T(), user)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *UserRepoTestSuite) TestGetByID_ScopedToTenant() {
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, email, password_hash, role, tenant_id, created_at`).
		WithArgs(suite.tenantID, suite.userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "role", "tenant_id", "created_at"}).
			AddRow(suite.userID, "user@acme.test", "$2a$10$hash", models.RoleMember, suite.tenantID, now))

	user, err := suite.repo.GetByID(suite.ctx, suite.tenantID, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "user@acme.test", user.Email)
}

func (suite *UserRepoTestSuite) TestGetByID_WrongTenant() {
	otherTenant := uuid.New()

	suite.mock.ExpectQuery(`SELECT id, email, password_hash, role, tenant_id, created_at`).
		WithArgs(otherTenant, suite.userID).
		WillReturnError(pgx.ErrNoRows)

	user, err := suite.repo.GetByID(suite.ctx, otherTenant, suite.userID)
	assert.Nil(suite.T(), user)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}
