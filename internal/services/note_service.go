package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"notably/internal/caching"
	"notably/internal/models"
	"notably/internal/repositories"
)

const noteCacheTTL = 5 * time.Minute

// NoteService implements tenant-scoped note CRUD. Every operation takes the
// caller's tenant ID; a note outside that tenant behaves exactly like a
// missing one.
type NoteService interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error)
	Get(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error)
	Create(ctx context.Context, tenantID, userID uuid.UUID, title, content string) (*models.Note, error)
	Update(ctx context.Context, tenantID, noteID uuid.UUID, title, content string) (*models.Note, error)
	Delete(ctx context.Context, tenantID, noteID uuid.UUID) error
}

type noteService struct {
	noteRepo repositories.NoteRepository
	cacheSvc caching.CacheService
}

func NewNoteService(noteRepo repositories.NoteRepository, cacheSvc caching.CacheService) NoteService {
	return &noteService{
		noteRepo: noteRepo,
		cacheSvc: cacheSvc,
	}
}

func (s *noteService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Note, error) {
	return s.noteRepo.ListByTenant(ctx, tenantID)
}

func (s *noteService) Get(ctx context.Context, tenantID, noteID uuid.UUID) (*models.Note, error) {
	if note, err := s.cacheSvc.GetNote(ctx, tenantID, noteID); err == nil {
		return note, nil
	}

	note, err := s.noteRepo.GetByID(ctx, tenantID, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if err := s.cacheSvc.SetNote(ctx, note, noteCacheTTL); err != nil {
		zap.L().Warn("failed to cache note", zap.Error(err))
	}
	return note, nil
}

func (s *noteService) Create(ctx context.Context, tenantID, userID uuid.UUID, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, ErrTitleAndContentRequired
	}

	note := &models.Note{
		ID:       uuid.New(),
		Title:    title,
		Content:  content,
		TenantID: tenantID,
		UserID:   userID,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			return nil, ErrQuotaExceeded
		}
		return nil, err
	}

	if err := s.cacheSvc.SetNote(ctx, note, noteCacheTTL); err != nil {
		zap.L().Warn("failed to cache note", zap.Error(err))
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, tenantID, noteID uuid.UUID, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, ErrTitleAndContentRequired
	}

	note, err := s.noteRepo.GetByID(ctx, tenantID, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	note.Title = title
	note.Content = content
	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if err := s.cacheSvc.DeleteNote(ctx, tenantID, noteID); err != nil {
		zap.L().Warn("failed to invalidate note cache", zap.Error(err))
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, tenantID, noteID uuid.UUID) error {
	err := s.noteRepo.Delete(ctx, tenantID, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteNotFound
		}
		return err
	}

	if err := s.cacheSvc.DeleteNote(ctx, tenantID, noteID); err != nil {
		zap.L().Warn("failed to invalidate note cache", zap.Error(err))
	}
	return nil
}
