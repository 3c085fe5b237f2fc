package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notably/internal/authz"
	"notably/internal/caching"
	"notably/internal/common"
	"notably/internal/models"
	"notably/internal/repositories"
)

const tenantCacheTTL = 5 * time.Minute

type TenantService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	// Upgrade flips the tenant identified by slug from free to pro. The caller
	// must belong to that tenant; ErrTenantMismatch otherwise. Upgrading an
	// already-pro tenant yields ErrAlreadyPro and changes nothing.
	Upgrade(ctx context.Context, caller common.Principal, slug string) (*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cacheSvc   caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, cacheSvc caching.CacheService) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		cacheSvc:   cacheSvc,
	}
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if tenant, err := s.cacheSvc.GetTenantBySlug(ctx, slug); err == nil {
		return tenant, nil
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if err := s.cacheSvc.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
		zap.L().Warn("failed to cache tenant", zap.Error(err))
	}
	return tenant, nil
}

func (s *tenantService) Upgrade(ctx context.Context, caller common.Principal, slug string) (*models.Tenant, error) {
	// Resolve against the store, not the cache: the plan decides whether the
	// transition is legal.
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if !authz.MemberOf(tenant.ID)(caller) {
		return nil, ErrTenantMismatch
	}

	if tenant.SubscriptionPlan == models.PlanPro {
		return nil, ErrAlreadyPro
	}

	if err := s.tenantRepo.UpdatePlan(ctx, tenant.ID, models.PlanPro); err != nil {
		return nil, err
	}
	tenant.SubscriptionPlan = models.PlanPro

	if err := s.cacheSvc.DeleteTenant(ctx, tenant.Slug); err != nil {
		zap.L().Warn("failed to invalidate tenant cache", zap.Error(err))
	}

	zap.L().Info("tenant upgraded to pro plan",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)
	return tenant, nil
}
