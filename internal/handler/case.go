package handler // handler package contains the owner-scoped case handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/queue"
	"github.com/casedesk/casedesk/internal/repository"
)

// CaseLoader is the slice of the case repository that dependent
// resources (notes, speeches, documents) need: loading a parent case
// filtered by owner.  It is the single ownership-check primitive every
// handler goes through.
type CaseLoader interface {
	GetByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) (*model.Case, error)
}

// CaseStore is the full case repository surface.
type CaseStore interface {
	CaseLoader
	Create(ctx context.Context, cs *model.Case) error
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*model.Case, error)
	Update(ctx context.Context, cs *model.Case) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// CaseHandler serves the /cases CRUD surface.
type CaseHandler struct {
	Cases CaseStore
}

func NewCaseHandler(cases CaseStore) *CaseHandler {
	if cases == nil {
		panic("nil store passed to NewCaseHandler")
	}
	return &CaseHandler{Cases: cases}
}

type caseInput struct {
	CaseNumber  string `json:"case_number"`
	CaseTitle   string `json:"case_title"`
	ClientName  string `json:"client_name"`
	CourtName   string `json:"court_name"`
	CaseType    string `json:"case_type"`
	FilingDate  string `json:"filing_date"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// parseFilingDate accepts RFC3339 timestamps or bare dates.
func parseFilingDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// validateCase checks the merged field set and returns the first
// violated field's message, or ("", date) when valid.
func validateCase(in caseInput) (string, time.Time) {
	if strings.TrimSpace(in.CaseNumber) == "" {
		return "Case number is required", time.Time{}
	}
	if strings.TrimSpace(in.CaseTitle) == "" {
		return "Case title is required", time.Time{}
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return "Client name is required", time.Time{}
	}
	if strings.TrimSpace(in.CourtName) == "" {
		return "Court name is required", time.Time{}
	}
	if strings.TrimSpace(in.CaseType) == "" {
		return "Case type is required", time.Time{}
	}
	if strings.TrimSpace(in.FilingDate) == "" {
		return "Filing date is required", time.Time{}
	}
	filed, ok := parseFilingDate(strings.TrimSpace(in.FilingDate))
	if !ok {
		return "Filing date must be a valid date", time.Time{}
	}
	if in.Status != "" && !model.ValidStatus(in.Status) {
		return "Status must be one of Pending, Active, Closed or On Hold", time.Time{}
	}
	return "", filed
}

// List handles GET /cases and returns all cases owned by the
// authenticated lawyer, newest first.
func (h *CaseHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	items, err := h.Cases.ListByOwner(c.Request().Context(), user.ID)
	if err != nil {
		c.Logger().Errorf("list cases: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching cases")
	}
	return respond(c, http.StatusOK, "", items)
}

// Get handles GET /cases/:id.  A case owned by someone else is reported
// exactly like a missing one.
func (h *CaseHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	cs, err := h.Cases.GetByIDAndOwner(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("get case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching case")
	}
	return respond(c, http.StatusOK, "", cs)
}

// Create handles POST /cases.  The owner reference always comes from the
// resolved identity, never from the body.
func (h *CaseHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var in caseInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	msg, filed := validateCase(in)
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	cs := &model.Case{
		LawyerID:    user.ID,
		CaseNumber:  strings.TrimSpace(in.CaseNumber),
		CaseTitle:   strings.TrimSpace(in.CaseTitle),
		ClientName:  strings.TrimSpace(in.ClientName),
		CourtName:   strings.TrimSpace(in.CourtName),
		CaseType:    strings.TrimSpace(in.CaseType),
		FilingDate:  filed,
		Status:      status,
		Description: in.Description,
	}
	if err := h.Cases.Create(c.Request().Context(), cs); err != nil {
		if errors.Is(err, repository.ErrCaseNumberExists) {
			return fail(c, http.StatusBadRequest, "Case number already exists")
		}
		c.Logger().Errorf("create case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating case")
	}
	publishActivity(queue.ActionCaseCreated, cs.ID.Hex(), cs.CaseNumber, user.ID.Hex(), cs.CaseTitle)
	return respond(c, http.StatusCreated, "Case created successfully", cs)
}

type caseUpdateInput struct {
	CaseNumber  *string `json:"case_number"`
	CaseTitle   *string `json:"case_title"`
	ClientName  *string `json:"client_name"`
	CourtName   *string `json:"court_name"`
	CaseType    *string `json:"case_type"`
	FilingDate  *string `json:"filing_date"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

// Update handles PUT /cases/:id as a partial merge: absent fields keep
// their stored value, present fields replace it, and the merged record
// is re-validated as a whole.  The owner reference cannot change: it is
// never read from the body and the repository filters by owner.
func (h *CaseHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	var in caseUpdateInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	cs, err := h.Cases.GetByIDAndOwner(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("update case: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating case")
	}

	merged := caseInput{
		CaseNumber:  cs.CaseNumber,
		CaseTitle:   cs.CaseTitle,
		ClientName:  cs.ClientName,
		CourtName:   cs.CourtName,
		CaseType:    cs.CaseType,
		FilingDate:  cs.FilingDate.Format(time.RFC3339),
		Status:      cs.Status,
		Description: cs.Description,
	}
	if in.CaseNumber != nil {
		merged.CaseNumber = *in.CaseNumber
	}
	if in.CaseTitle != nil {
		merged.CaseTitle = *in.CaseTitle
	}
	if in.ClientName != nil {
		merged.ClientName = *in.ClientName
	}
	if in.CourtName != nil {
		merged.CourtName = *in.CourtName
	}
	if in.CaseType != nil {
		merged.CaseType = *in.CaseType
	}
	if in.FilingDate != nil {
		merged.FilingDate = *in.FilingDate
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.Description != nil {
		merged.Description = *in.Description
	}

	msg, filed := validateCase(merged)
	if msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	status := merged.Status
	if status == "" {
		status = model.StatusPending
	}

	cs.CaseNumber = strings.TrimSpace(merged.CaseNumber)
	cs.CaseTitle = strings.TrimSpace(merged.CaseTitle)
	cs.ClientName = strings.TrimSpace(merged.ClientName)
	cs.CourtName = strings.TrimSpace(merged.CourtName)
	cs.CaseType = strings.TrimSpace(merged.CaseType)
	cs.FilingDate = filed
	cs.Status = status
	cs.Description = merged.Description

	if err := h.Cases.Update(c.Request().Context(), cs); err != nil {
		if errors.Is(err, repository.ErrCaseNumberExists) {
			return fail(c, http.StatusBadRequest, "Case number already exists")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("update case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error updating case")
	}
	publishActivity(queue.ActionCaseUpdated, cs.ID.Hex(), cs.CaseNumber, user.ID.Hex(), cs.CaseTitle)
	return respond(c, http.StatusOK, "Case updated successfully", cs)
}

// Delete handles DELETE /cases/:id.  Dependent notes, speeches and
// documents are not cascaded; they become unreachable because their
// parent ownership load fails afterwards.  A second delete of the same
// id answers 404.
func (h *CaseHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	if err := h.Cases.DeleteByIDAndOwner(c.Request().Context(), id, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("delete case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting case")
	}
	publishActivity(queue.ActionCaseDeleted, id.Hex(), "", user.ID.Hex(), "")
	return respond(c, http.StatusOK, "Case deleted successfully", nil)
}
