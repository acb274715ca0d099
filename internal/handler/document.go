package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/queue"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/storage"
)

// DocumentStore is the slice of the document repository the handlers need.
type DocumentStore interface {
	Create(ctx context.Context, d *model.Document) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error)
	ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Document, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DocumentHandler serves uploads, listing and deletion of case
// documents.  The metadata record and the stored bytes are kept in sync:
// an upload that fails after the bytes landed removes them again, and a
// delete removes both.
type DocumentHandler struct {
	Documents DocumentStore
	Cases     CaseLoader
	Files     *storage.Store
}

func NewDocumentHandler(documents DocumentStore, cases CaseLoader, files *storage.Store) *DocumentHandler {
	if documents == nil || cases == nil || files == nil {
		panic("nil dependency passed to NewDocumentHandler")
	}
	return &DocumentHandler{Documents: documents, Cases: cases, Files: files}
}

// ListByCase handles GET /documents/case/:caseId.
func (h *DocumentHandler) ListByCase(c echo.Context) error {
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
		c.Logger().Errorf("list documents: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching documents")
	}
	items, err := h.Documents.ListByCase(c.Request().Context(), caseID)
	if err != nil {
		c.Logger().Errorf("list documents: %v", err)
		return fail(c, http.StatusInternalServerError, "Error fetching documents")
	}
	return respond(c, http.StatusOK, "", items)
}

// Upload handles POST /documents (multipart: `file` + `case_id`).  All
// validation runs before any bytes touch the disk, so a rejected upload
// leaves neither a file nor a metadata record behind.
func (h *DocumentHandler) Upload(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Please upload a file")
	}
	caseID, ok := parseID(strings.TrimSpace(c.FormValue("case_id")))
	if !ok {
		return fail(c, http.StatusNotFound, "Case not found")
	}
	cs, err := h.Cases.GetByIDAndOwner(c.Request().Context(), caseID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Case not found")
		}
		c.Logger().Errorf("upload document: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error uploading document")
	}
	if fh.Size > storage.MaxFileSize {
		return fail(c, http.StatusBadRequest, "File must not exceed 10 MB")
	}
	if !storage.AllowedExt(fh.Filename) {
		return fail(c, http.StatusBadRequest, "Only documents and images are allowed")
	}

	src, err := fh.Open()
	if err != nil {
		c.Logger().Errorf("upload document: open part: %v", err)
		return fail(c, http.StatusInternalServerError, "Error uploading document")
	}
	defer src.Close()

	name, path, err := h.Files.Save(src, fh.Filename)
	if err != nil {
		c.Logger().Errorf("upload document: store file: %v", err)
		return fail(c, http.StatusInternalServerError, "Error uploading document")
	}

	doc := &model.Document{
		CaseID:     caseID,
		FileName:   fh.Filename,
		FilePath:   path,
		FileURL:    "/uploads/" + name,
		FileSize:   fh.Size,
		UploadedBy: user.ID,
	}
	if err := h.Documents.Create(c.Request().Context(), doc); err != nil {
		// The bytes are already on disk; remove them so a failed
		// metadata write leaks nothing.
		if rmErr := h.Files.Remove(name); rmErr != nil {
			c.Logger().Errorf("upload document: cleanup %s: %v", name, rmErr)
		}
		c.Logger().Errorf("upload document: save metadata: %v", err)
		return fail(c, http.StatusInternalServerError, "Error uploading document")
	}
	publishActivity(queue.ActionDocumentAdded, caseID.Hex(), cs.CaseNumber, user.ID.Hex(), doc.FileName)
	return respond(c, http.StatusCreated, "Document uploaded successfully", doc)
}

// Delete handles DELETE /documents/:id.  Bytes already missing on disk
// do not block deleting the metadata record.
func (h *DocumentHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "Document not found")
	}
	doc, err := h.Documents.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Document not found")
		}
		c.Logger().Errorf("delete document: load: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting document")
	}
	cs, err := h.Cases.GetByIDAndOwner(c.Request().Context(), doc.CaseID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusForbidden, "Not authorized")
		}
		c.Logger().Errorf("delete document: load case: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting document")
	}
	if err := h.Files.Remove(filepath.Base(doc.FilePath)); err != nil {
		c.Logger().Errorf("delete document: remove file: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting document")
	}
	if err := h.Documents.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Document not found")
		}
		c.Logger().Errorf("delete document: %v", err)
		return fail(c, http.StatusInternalServerError, "Error deleting document")
	}
	publishActivity(queue.ActionDocumentRemoved, doc.CaseID.Hex(), cs.CaseNumber, user.ID.Hex(), doc.FileName)
	return respond(c, http.StatusOK, "Document deleted successfully", nil)
}
