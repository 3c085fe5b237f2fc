package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notably/internal/models"
)

// ErrCacheMiss is returned when a key is absent. Callers treat any other cache
// error the same way; the store is always the source of truth.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenant(ctx context.Context, slug string) error

	GetNote(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error)
	SetNote(ctx context.Context, note *models.Note, ttl time.Duration) error
	DeleteNote(ctx context.Context, tenantID, noteID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		zap.L().Warn("redis ping failed on initialization", zap.String("addr", addr), zap.Error(err))
	}

	return &redisCacheService{client: client}
}

func tenantKey(slug string) string {
	return fmt.Sprintf("tenant:slug:%s", slug)
}

func noteKey(tenantID, noteID uuid.UUID) string {
	return fmt.Sprintf("note:%s:%s", tenantID, noteID)
}

func (s *redisCacheService) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	data, err := s.client.Get(ctx, tenantKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	tenant := &models.Tenant{}
	if err := json.Unmarshal(data, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *redisCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tenantKey(tenant.Slug), data, ttl).Err()
}

func (s *redisCacheService) DeleteTenant(ctx context.Context, slug string) error {
	return s.client.Del(ctx, tenantKey(slug)).Err()
}

func (s *redisCacheService) GetNote(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error) {
	data, err := s.client.Get(ctx, noteKey(tenantID, noteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	note := &models.Note{}
	if err := json.Unmarshal(data, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *redisCacheService) SetNote(ctx context.Context, note *models.Note, ttl time.Duration) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, noteKey(note.TenantID, note.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteNote(ctx context.Context, tenantID, noteID uuid.UUID) error {
	return s.client.Del(ctx, noteKey(tenantID, noteID)).Err()
}

// noopCacheService is used when no Redis address is configured: every read is
// a miss and every write succeeds.
type noopCacheService struct{}

func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetTenantBySlug(context.Context, string) (*models.Tenant, error) {
	return nil, ErrCacheMiss
}

func (noopCacheService) SetTenant(context.Context, *models.Tenant, time.Duration) error {
	return nil
}

func (noopCacheService) DeleteTenant(context.Context, string) error { return nil }

func (noopCacheService) GetNote(context.Context, uuid.UUID, uuid.UUID) (*models.Note, error) {
	return nil, ErrCacheMiss
}

func (noopCacheService) SetNote(context.Context, *models.Note, time.Duration) error { return nil }

func (noopCacheService) DeleteNote(context.Context, uuid.UUID, uuid.UUID) error { return nil }
