package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"notably/internal/repositories"
)

// JobScheduler runs periodic maintenance jobs alongside the HTTP server.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	tenantRepo repositories.TenantRepository
	noteRepo   repositories.NoteRepository
}

func NewJobScheduler(tenantRepo repositories.TenantRepository, noteRepo repositories.NoteRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		tenantRepo: tenantRepo,
		noteRepo:   noteRepo,
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	zap.L().Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	zap.L().Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(js.snapshotTenantUsage, context.Background()),
		gocron.WithName("tenant-usage-snapshot"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

// snapshotTenantUsage logs per-tenant note counts and plans, which is the
// operational signal for how close free tenants are to their quota.
func (js *JobScheduler) snapshotTenantUsage(ctx context.Context) {
	tenants, err := js.tenantRepo.List(ctx)
	if err != nil {
		zap.L().Error("usage snapshot: failed to list tenants", zap.Error(err))
		return
	}

	for _, tenant := range tenants {
		count, err := js.noteRepo.CountByTenant(ctx, tenant.ID)
		if err != nil {
			zap.L().Error("usage snapshot: failed to count notes",
				zap.String("tenant_id", tenant.ID.String()), zap.Error(err))
			continue
		}

		zap.L().Info("tenant usage",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("slug", tenant.Slug),
			zap.String("plan", tenant.SubscriptionPlan),
			zap.Int("notes", count),
		)
	}
}
