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

// SpeechStore is the slice of the speech repository the handlers need.
type SpeechStore interface {
	Create(ctx context.Context, s *model.Speech) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Speech, error)
	ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Speech, error)
	Update(ctx context.Context, s *model.Speech) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SpeechHandler serves the /speeches surface.  Same ownership rules as
// notes: the parent case decides who may act.
type SpeechHandler struct {
	Speeches SpeechStore
	Cases    CaseLoader
}

func NewSpeechHandler(speeches SpeechStore, cases CaseLoader) *SpeechHandler {
	if speeches == nil || cases == nil {
		panic("nil store passed to NewSpeechHandler")
	}
	return &SpeechHandler{Speeches: speeches, Cases: cases}
}

// ListByCase handles GET /speeches/case/:caseId.
func (h *SpeechHandler) ListByCase(c echo.Context) error {
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
		c.Logger().Errorf("list speeches: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching speeches")
	}
	items, err := h.Speeches.ListByCase(c.Request().Context(), caseID)
	if err != nil {
		c.Logger().Errorf("list speeches: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching speeches")
	}
	return respond(c, http.StatusOK, "", items)
}

// Get handles GET /speeches/:id.
func (h *SpeechHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Speech not found")
	}
	s, err := h.Speeches.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("get speech: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching speech")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), s.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("get speech: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching speech")
	}
	return respond(c, http.StatusOK, "", s)
}

// Create handles POST /speeches.
func (h *SpeechHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var in noteInput // same field set: case_id, title, content
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
		c.Logger().Errorf("create speech: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating speech")
	}
	s := &model.Speech{
		CaseID:    caseID,
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		CreatedBy: user.ID,
	}
	if err := h.Speeches.Create(c.Request().Context(), s); err != nil {
		c.Logger().Errorf("create speech: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating speech")
	}
	return respond(c, http.StatusCreated, "Speech created successfully", s)
}

// Update handles PUT /speeches/:id.
func (h *SpeechHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Speech not found")
	}
	s, err := h.Speeches.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("update speech: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating speech")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), s.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusForbidden, "Not authorized")
		}
		c.Logger().Errorf("update speech: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating speech")
	}
	var in noteUpdateInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return fail(c, http.StatusBadRequest, "Title cannot be empty")
		}
		s.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return fail(c, http.StatusBadRequest, "Content cannot be empty")
		}
		s.Content = strings.TrimSpace(*in.Content)
	}
	if err := h.Speeches.Update(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("update speech: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating speech")
	}
	return respond(c, http.StatusOK, "Speech updated successfully", s)
}

// Delete handles DELETE /speeches/:id.
func (h *SpeechHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Speech not found")
	}
	s, err := h.Speeches.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("delete speech: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting speech")
	}
	if _, err := h.Cases.GetByIDAndOwner(c.Request().Context(), s.CaseID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusForbidden, "Not authorized")
		}
		c.Logger().Errorf("delete speech: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting speech")
	}
	if err := h.Speeches.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Speech not found")
		}
		c.Logger().Errorf("delete speech: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting speech")
	}
	return respond(c, http.StatusOK, "Speech deleted successfully", nil)
}
