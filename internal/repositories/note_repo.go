package repositories

import (
	"context"
	"errors"

	"notably/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrQuotaExceeded is returned by Create when a free-plan tenant already holds
// the maximum number of notes.
var ErrQuotaExceeded = errors.New("free plan note limit reached")

type NoteRepository interface {
	// Create inserts the note, enforcing the free-plan quota atomically: the
	// tenant row is locked for the duration of the transaction, so two
	// concurrent creates at the limit cannot both pass the count check.
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

type noteRepo struct {
	db Database
}

func NewNoteRepo(db Database) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Create(ctx context.Context, note *models.Note) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var plan string
	err = tx.QueryRow(ctx,
		`SELECT subscription_plan FROM tenants WHERE id = $1 FOR UPDATE`,
		note.TenantID,
	).Scan(&plan)
	if err != nil {
		return err
	}

	if plan == models.PlanFree {
		var count int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM notes WHERE tenant_id = $1`,
			note.TenantID,
		).Scan(&count)
		if err != nil {
			return err
		}
		if count >= models.FreePlanNoteLimit {
			return ErrQuotaExceeded
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO notes (id, title, content, tenant_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, note.ID, note.Title, note.Content, note.TenantID, note.UserID).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *noteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	note := &models.Note{}
	query := `
		SELECT id, title, content, tenant_id, user_id, created_at, updated_at
		FROM notes
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).
		Scan(&note.ID, &note.Title, &note.Content, &note.TenantID, &note.UserID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (r *noteRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error) {
	query := `
		SELECT id, title, content, tenant_id, user_id, created_at, updated_at
		FROM notes
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.TenantID, &note.UserID, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepo) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $1, content = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query, note.Title, note.Content, note.TenantID, note.ID).
		Scan(&note.UpdatedAt)
}

func (r *noteRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepo) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}
