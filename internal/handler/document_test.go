package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/storage"
)

type stubDocumentStore struct {
	docs    map[primitive.ObjectID]*model.Document
	failing bool
}

func newStubDocumentStore() *stubDocumentStore {
	return &stubDocumentStore{docs: map[primitive.ObjectID]*model.Document{}}
}

func (s *stubDocumentStore) Create(_ context.Context, d *model.Document) error {
	if s.failing {
		return errors.New("insert failed")
	}
	d.ID = primitive.NewObjectID()
	cp := *d
	s.docs[d.ID] = &cp
	return nil
}

func (s *stubDocumentStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *stubDocumentStore) ListByCase(_ context.Context, caseID primitive.ObjectID) ([]*model.Document, error) {
	var out []*model.Document
	for _, d := range s.docs {
		if d.CaseID == caseID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubDocumentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// multipartUpload builds a multipart POST /documents request carrying a
// file part and a case_id field.
func multipartUpload(t *testing.T, fileName, content, caseID string, u *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("case_id", caseID))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user", u)
	c.Set("user_id", u.ID.Hex())
	return c, rec
}

func newDocHandler(t *testing.T, docs DocumentStore, cases CaseLoader) (*DocumentHandler, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.New(dir)
	require.NoError(t, err)
	return NewDocumentHandler(docs, cases, files), dir
}

func TestDocumentUpload(t *testing.T) {
	u := testUser()
	loader, cs := ownedCase(u)
	store := newStubDocumentStore()
	h, dir := newDocHandler(t, store, loader)

	c, rec := multipartUpload(t, "brief.pdf", "pdf bytes", cs.ID.Hex(), u)
	require.NoError(t, h.Upload(c))
	requireStatus(t, rec, http.StatusCreated)

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "brief.pdf", data["file_name"])
	assert.Equal(t, u.ID.Hex(), data["uploaded_by"])

	// The bytes landed on disk under the generated name.
	url := data["file_url"].(string)
	name := filepath.Base(url)
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(b))
}

func TestDocumentUploadRejections(t *testing.T) {
	u := testUser()
	loader, cs := ownedCase(u)
	h, dir := newDocHandler(t, newStubDocumentStore(), loader)

	t.Run("no file", func(t *testing.T) {
		c, rec := multipartUpload(t, "", "", cs.ID.Hex(), u)
		require.NoError(t, h.Upload(c))
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "Please upload a file", decodeEnvelope(t, rec)["message"])
	})

	t.Run("disallowed extension", func(t *testing.T) {
		c, rec := multipartUpload(t, "malware.exe", "MZ", cs.ID.Hex(), u)
		require.NoError(t, h.Upload(c))
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "Only documents and images are allowed", decodeEnvelope(t, rec)["message"])
	})

	t.Run("unowned case", func(t *testing.T) {
		c, rec := multipartUpload(t, "brief.pdf", "x", cs.ID.Hex(), testUser())
		require.NoError(t, h.Upload(c))
		requireStatus(t, rec, http.StatusNotFound)
		assert.Equal(t, "Case not found", decodeEnvelope(t, rec)["message"])
	})

	// No rejected upload left bytes behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDocumentUploadCleansUpOnMetadataFailure(t *testing.T) {
	u := testUser()
	loader, cs := ownedCase(u)
	store := newStubDocumentStore()
	store.failing = true
	h, dir := newDocHandler(t, store, loader)

	c, rec := multipartUpload(t, "brief.pdf", "pdf bytes", cs.ID.Hex(), u)
	require.NoError(t, h.Upload(c))
	requireStatus(t, rec, http.StatusInternalServerError)

	// The stored file was removed when the metadata write failed.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDocumentDelete(t *testing.T) {
	u := testUser()
	loader, cs := ownedCase(u)
	store := newStubDocumentStore()
	h, dir := newDocHandler(t, store, loader)

	c, rec := multipartUpload(t, "brief.pdf", "pdf bytes", cs.ID.Hex(), u)
	require.NoError(t, h.Upload(c))
	id := decodeEnvelope(t, rec)["data"].(map[string]any)["id"].(string)

	c, rec = newJSONContext(t, http.MethodDelete, "/documents/"+id, "", u)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	requireStatus(t, rec, http.StatusOK)

	// Both the record and the bytes are gone.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	c, rec = newJSONContext(t, http.MethodDelete, "/documents/"+id, "", u)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	requireStatus(t, rec, http.StatusNotFound)
}

func TestDocumentDeleteUnownedIs403(t *testing.T) {
	owner := testUser()
	loader, cs := ownedCase(owner)
	store := newStubDocumentStore()
	h, _ := newDocHandler(t, store, loader)

	c, rec := multipartUpload(t, "brief.pdf", "pdf bytes", cs.ID.Hex(), owner)
	require.NoError(t, h.Upload(c))
	id := decodeEnvelope(t, rec)["data"].(map[string]any)["id"].(string)

	c, rec = newJSONContext(t, http.MethodDelete, "/documents/"+id, "", testUser())
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	requireStatus(t, rec, http.StatusForbidden)
	assert.Equal(t, "Not authorized", decodeEnvelope(t, rec)["message"])
}

func TestDocumentDeleteSurvivesMissingBytes(t *testing.T) {
	u := testUser()
	loader, cs := ownedCase(u)
	store := newStubDocumentStore()
	h, dir := newDocHandler(t, store, loader)

	c, rec := multipartUpload(t, "brief.pdf", "pdf bytes", cs.ID.Hex(), u)
	require.NoError(t, h.Upload(c))
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	id := data["id"].(string)
	name := filepath.Base(data["file_url"].(string))

	// Simulate drift: the bytes vanish outside the API.
	require.NoError(t, os.Remove(filepath.Join(dir, name)))

	c, rec = newJSONContext(t, http.MethodDelete, "/documents/"+id, "", u)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.Delete(c))
	requireStatus(t, rec, http.StatusOK)
}
