package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
)

// NoteStore is the slice of the note repository the handlers need.
type NoteStore interface {
	Create(ctx context.Context, n *model.Note) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Note, error)
	ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Note, error)
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NoteHandler serves the /notes surface.  Notes are owned through their
// parent case: every operation loads the case owner-filtered first.
type NoteHandler struct {
	Notes NoteStore
	Cases CaseLoader
}

func NewNoteHandler(notes NoteStore, cases CaseLoader) *NoteHandler {
	if notes == nil || cases == nil {
		panic("nil store passed to NewNoteHandler")
	}
	return &NoteHandler{Notes: notes, Cases: cases}
}

type noteInput struct {
	CaseID  string `json:"case_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteUpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListByCase handles GET /notes/case/:caseId.  The case must belong to
// the requester; otherwise the whole listing is a 404.
func (h *NoteHandler) ListByCase(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	caseID, ok := parseID(c.Param("caseId"))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), caseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("list notes: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching notes")
	}
	items, err := h.Notes.ListByCase(c.Request().Context(), caseID)
	if err != nil {
		c.Logger().Errorf("list notes: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching notes")
	}
	return respond(c, http.StatusOK, "", items)
}

// Get handles GET /notes/:id.  On reads, a note whose parent case is
// missing or not owned is reported as absent.
func (h *NoteHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Note not found")
	}
	n, err := h.Notes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("get note: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching note")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), n.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("get note: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching note")
	}
	return respond(c, http.StatusOK, "", n)
}

// Create handles POST /notes.
func (h *NoteHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var in noteInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(in.CaseID) == "" {
		return fail(c, http.StatusBadRequest, "Case ID is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return fail(c, http.StatusBadRequest, "Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return fail(c, http.StatusBadRequest, "Content is required")
	}
	caseID, ok := parseID(strings.TrimSpace(in.CaseID))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), caseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("create note: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating note")
	}
	n := &model.Note{
		CaseID:    caseID,
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		CreatedBy: user.ID,
	}
	if err := h.Notes.Create(c.Request().Context(), n); err != nil {
		c.Logger().Errorf("create note: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating note")
	}
	return respond(c, http.StatusCreated, "Note created successfully", n)
}

// Update handles PUT /notes/:id.  A note that exists under someone
// else's case is a 403 on writes, matching the write/read split of the
// error taxonomy.
func (h *NoteHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Note not found")
	}
	n, err := h.Notes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("update note: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating note")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), n.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusForbidden, "Not authorized")
		}
		c.Logger().Errorf("update note: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating note")
	}
	var in noteUpdateInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return fail(c, http.StatusBadRequest, "Title cannot be empty")
		}
		n.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return fail(c, http.StatusBadRequest, "Content cannot be empty")
		}
		n.Content = strings.TrimSpace(*in.Content)
	}
	if err := h.Notes.Update(c.Request().Context(), n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("update note: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating note")
	}
	return respond(c, http.StatusOK, "Note updated successfully", n)
}

// Delete handles DELETE /notes/:id.
func (h *NoteHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Note not found")
	}
	n, err := h.Notes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("delete note: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting note")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), n.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusForbidden, "Not authorized")
		}
		c.Logger().Errorf("delete note: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting note")
	}
	if err := h.Notes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Note not found")
		}
		c.Logger().Errorf("delete note: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting note")
	}
	return respond(c, http.StatusOK, "Note deleted successfully", nil)
}
