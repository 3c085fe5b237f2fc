package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notably/internal/common"
	"notably/internal/services"
)

// NoteHandlers handles note-related HTTP requests. Every operation is scoped
// to the authenticated principal's tenant; notes in other tenants are
// indistinguishable from notes that do not exist.
type NoteHandlers struct {
	noteService services.NoteService
}

func NewNoteHandlers(noteService services.NoteService) *NoteHandlers {
	return &NoteHandlers{noteService: noteService}
}

// NoteRequest represents the create/update payload. Both fields are required;
// partial updates are not supported.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListNotes handles GET /notes, newest-created first.
func (h *NoteHandlers) ListNotes(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	notes, err := h.noteService.List(ctx, principal.TenantID)
	if err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusOK, notes)
}

// GetNote handles GET /notes/:id.
func (h *NoteHandlers) GetNote(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	// A malformed id is the same miss as an unknown one.
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Note not found")
	}

	note, err := h.noteService.Get(ctx, principal.TenantID, noteID)
	if err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Note not found")
		}
		return internalError(err)
	}

	return c.JSON(http.StatusOK, note)
}

// CreateNote handles POST /notes, enforcing the free-plan quota.
func (h *NoteHandlers) CreateNote(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	note, err := h.noteService.Create(ctx, principal.TenantID, principal.UserID, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleAndContentRequired):
			return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
		case errors.Is(err, services.ErrQuotaExceeded):
			return echo.NewHTTPError(http.StatusForbidden, "Free plan limit reached. Upgrade to Pro for unlimited notes.")
		default:
			return internalError(err)
		}
	}

	return c.JSON(http.StatusCreated, note)
}

// UpdateNote handles PUT /notes/:id.
func (h *NoteHandlers) UpdateNote(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Note not found")
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	note, err := h.noteService.Update(ctx, principal.TenantID, noteID, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleAndContentRequired):
			return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
		case errors.Is(err, services.ErrNoteNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Note not found")
		default:
			return internalError(err)
		}
	}

	return c.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/:id. Deleting an already-deleted note is a
// plain not-found, not a distinct error.
func (h *NoteHandlers) DeleteNote(c echo.Context) error {
	ctx := c.Request().Context()

	principal, ok := common.GetPrincipalFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Note not found")
	}

	if err := h.noteService.Delete(ctx, principal.TenantID, noteID); err != nil {
		if errors.Is(err, services.ErrNoteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Note not found")
		}
		return internalError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Note deleted successfully",
	})
}
