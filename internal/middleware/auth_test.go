package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/utils"
)

const testSecret = "test-secret"

// stubUsers resolves exactly one user id.
type stubUsers struct {
	u *model.User
}

func (s stubUsers) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	if s.u != nil && s.u.ID == id {
		return s.u, nil
	}
	return nil, repository.ErrNotFound
}

// runAuth sends a request with the given Authorization header through
// the middleware and reports whether the inner handler ran.
func runAuth(t *testing.T, users UserLoader, header string) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/cases", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	reached := false
	next := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, Auth(testSecret, users)(next)(c))
	return rec, reached, c
}

func TestAuthMissingToken(t *testing.T) {
	rec, reached, _ := runAuth(t, stubUsers{}, "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	rec, reached, _ := runAuth(t, stubUsers{}, "Token abc")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthGarbageToken(t *testing.T) {
	rec, reached, _ := runAuth(t, stubUsers{}, "Bearer not.a.jwt")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	u := &model.User{ID: primitive.NewObjectID()}
	tok, err := utils.NewAccessToken("some-other-secret", u.ID.Hex(), 15)
	require.NoError(t, err)

	rec, reached, _ := runAuth(t, stubUsers{u: u}, "Bearer "+tok.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	u := &model.User{ID: primitive.NewObjectID()}
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), -5)
	require.NoError(t, err)

	rec, reached, _ := runAuth(t, stubUsers{u: u}, "Bearer "+tok.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthDanglingSubject(t *testing.T) {
	// Token is valid but its subject no longer resolves to a user.
	tok, err := utils.NewAccessToken(testSecret, primitive.NewObjectID().Hex(), 15)
	require.NoError(t, err)

	rec, reached, _ := runAuth(t, stubUsers{}, "Bearer "+tok.Token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user no longer exists")
}

func TestAuthValidToken(t *testing.T) {
	u := &model.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "a@b.co"}
	tok, err := utils.NewAccessToken(testSecret, u.ID.Hex(), 15)
	require.NoError(t, err)

	rec, reached, c := runAuth(t, stubUsers{u: u}, "Bearer "+tok.Token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)

	got, ok := c.Get("user").(*model.User)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.ID.Hex(), c.Get("user_id"))
}
