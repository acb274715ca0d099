package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
)

// newJSONContext builds an Echo context for a JSON request with the
// given authenticated user already injected, the way the auth middleware
// would have done it.
func newJSONContext(t *testing.T, method, target, body string, u *model.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if u != nil {
		c.Set("user", u)
		c.Set("user_id", u.ID.Hex())
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func testUser() *model.User {
	return &model.User{
		ID:           primitive.NewObjectID(),
		Name:         "Ada Lawyer",
		Email:        "ada@example.com",
		AuthProvider: model.ProviderLocal,
	}
}

// stubCaseLoader owns exactly one case for exactly one lawyer.  Every
// other (id, owner) pair answers ErrNotFound, matching the repository's
// behavior for both missing and foreign cases.
type stubCaseLoader struct {
	cs    *model.Case
	owner primitive.ObjectID
}

func (s *stubCaseLoader) GetByIDAndOwner(_ context.Context, id, ownerID primitive.ObjectID) (*model.Case, error) {
	if s.cs != nil && s.cs.ID == id && s.owner == ownerID {
		return s.cs, nil
	}
	return nil, repository.ErrNotFound
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}
