package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/casedesk/casedesk/internal/config"
	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/utils"
)

type stubUserStore struct {
	users map[primitive.ObjectID]*model.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[primitive.ObjectID]*model.User{}}
}

func (s *stubUserStore) Create(_ context.Context, u *model.User) error {
	for _, other := range s.users {
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserStore) GetByGoogleIDOrEmail(_ context.Context, googleID, email string) (*model.User, error) {
	for _, u := range s.users {
		if (googleID != "" && u.GoogleID == googleID) || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserStore) LinkGoogle(_ context.Context, id primitive.ObjectID, googleID, avatar string) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GoogleID = googleID
	if avatar != "" {
		u.Avatar = avatar
	}
	return nil
}

// stubVerifier returns fixed claims, or an error when claims are empty.
type stubVerifier struct {
	claims utils.GoogleClaims
}

func (v stubVerifier) Verify(_ context.Context, _ string) (utils.GoogleClaims, error) {
	if v.claims.Sub == "" {
		return utils.GoogleClaims{}, errors.New("bad credential")
	}
	return v.claims, nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		AccessTTLMin: 15,
		BcryptCost:   bcrypt.MinCost,
	}
}

func TestSignupIssuesToken(t *testing.T) {
	store := newStubUserStore()
	h := NewAuthHandler(testConfig(), store, stubVerifier{})

	body := `{"name":"Ada","email":"Ada@Example.COM","password":"longenough"}`
	c, rec := newJSONContext(t, http.MethodPost, "/auth/signup", body, nil)
	require.NoError(t, h.Signup(c))
	requireStatus(t, rec, http.StatusCreated)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	// Credential material never leaves the server.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignupValidationOrder(t *testing.T) {
	h := NewAuthHandler(testConfig(), newStubUserStore(), stubVerifier{})

	tests := []struct {
		body string
		msg  string
	}{
		{`{}`, "Name is required"},
		{`{"name":"Ada","email":"not-an-email"}`, "Please provide a valid email"},
		{`{"name":"Ada","email":"a@b.co","password":"short"}`, "Password must be at least 8 characters"},
	}
	for _, tt := range tests {
		c, rec := newJSONContext(t, http.MethodPost, "/auth/signup", tt.body, nil)
		require.NoError(t, h.Signup(c))
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, tt.msg, decodeEnvelope(t, rec)["message"])
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := newStubUserStore()
	h := NewAuthHandler(testConfig(), store, stubVerifier{})

	body := `{"name":"Ada","email":"a@b.co","password":"longenough"}`
	c, rec := newJSONContext(t, http.MethodPost, "/auth/signup", body, nil)
	require.NoError(t, h.Signup(c))
	requireStatus(t, rec, http.StatusCreated)

	c, rec = newJSONContext(t, http.MethodPost, "/auth/signup", body, nil)
	require.NoError(t, h.Signup(c))
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "User already exists with this email", decodeEnvelope(t, rec)["message"])
}

func TestLogin(t *testing.T) {
	store := newStubUserStore()
	h := NewAuthHandler(testConfig(), store, stubVerifier{})

	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), &model.User{
		Name: "Ada", Email: "a@b.co", PasswordHash: hash, AuthProvider: model.ProviderLocal,
	}))

	t.Run("success", func(t *testing.T) {
		c, rec := newJSONContext(t, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"correct-horse"}`, nil)
		require.NoError(t, h.Login(c))
		requireStatus(t, rec, http.StatusOK)
		assert.NotEmpty(t, decodeEnvelope(t, rec)["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := newJSONContext(t, http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"wrong"}`, nil)
		require.NoError(t, h.Login(c))
		requireStatus(t, rec, http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", decodeEnvelope(t, rec)["message"])
	})

	t.Run("unknown email", func(t *testing.T) {
		c, rec := newJSONContext(t, http.MethodPost, "/auth/login", `{"email":"nobody@b.co","password":"whatever"}`, nil)
		require.NoError(t, h.Login(c))
		requireStatus(t, rec, http.StatusUnauthorized)
		// Same message as a wrong password: the response must not leak
		// whether the email is registered.
		assert.Equal(t, "Invalid email or password", decodeEnvelope(t, rec)["message"])
	})
}

func TestLoginFederatedOnlyAccount(t *testing.T) {
	store := newStubUserStore()
	h := NewAuthHandler(testConfig(), store, stubVerifier{})

	require.NoError(t, store.Create(context.Background(), &model.User{
		Name: "Gee", Email: "g@b.co", GoogleID: "goog-1", AuthProvider: model.ProviderGoogle,
	}))

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login", `{"email":"g@b.co","password":"whatever1"}`, nil)
	require.NoError(t, h.Login(c))
	requireStatus(t, rec, http.StatusBadRequest)
	assert.True(t, strings.Contains(decodeEnvelope(t, rec)["message"].(string), "sign in with Google"))
}

func TestGoogleAuthCreatesUser(t *testing.T) {
	store := newStubUserStore()
	verifier := stubVerifier{claims: utils.GoogleClaims{
		Sub: "goog-9", Email: "new@b.co", Name: "New User", Picture: "http://img",
	}}
	h := NewAuthHandler(testConfig(), store, verifier)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/google", `{"credential":"tok"}`, nil)
	require.NoError(t, h.GoogleAuth(c))
	requireStatus(t, rec, http.StatusOK)

	u, err := store.GetByEmail(context.Background(), "new@b.co")
	require.NoError(t, err)
	assert.Equal(t, "goog-9", u.GoogleID)
	assert.Equal(t, model.ProviderGoogle, u.AuthProvider)
}

func TestGoogleAuthLinksLocalAccount(t *testing.T) {
	store := newStubUserStore()
	hash, _ := utils.HashPassword("longenough", bcrypt.MinCost)
	local := &model.User{Name: "Ada", Email: "a@b.co", PasswordHash: hash, AuthProvider: model.ProviderLocal}
	require.NoError(t, store.Create(context.Background(), local))

	verifier := stubVerifier{claims: utils.GoogleClaims{Sub: "goog-1", Email: "a@b.co", Name: "Ada", Picture: "http://img"}}
	h := NewAuthHandler(testConfig(), store, verifier)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/google", `{"credential":"tok"}`, nil)
	require.NoError(t, h.GoogleAuth(c))
	requireStatus(t, rec, http.StatusOK)

	u, err := store.GetByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "goog-1", u.GoogleID)
	// The account stays local; only the Google id and avatar are added.
	assert.Equal(t, model.ProviderLocal, u.AuthProvider)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestGoogleAuthBadCredential(t *testing.T) {
	h := NewAuthHandler(testConfig(), newStubUserStore(), stubVerifier{})

	c, rec := newJSONContext(t, http.MethodPost, "/auth/google", `{"credential":""}`, nil)
	require.NoError(t, h.GoogleAuth(c))
	requireStatus(t, rec, http.StatusBadRequest)

	c, rec = newJSONContext(t, http.MethodPost, "/auth/google", `{"credential":"garbage"}`, nil)
	require.NoError(t, h.GoogleAuth(c))
	requireStatus(t, rec, http.StatusUnauthorized)
	assert.Equal(t, "Invalid Google credential", decodeEnvelope(t, rec)["message"])
}

func TestMeAndRefresh(t *testing.T) {
	h := NewAuthHandler(testConfig(), newStubUserStore(), stubVerifier{})
	u := testUser()

	c, rec := newJSONContext(t, http.MethodGet, "/auth/me", "", u)
	require.NoError(t, h.Me(c))
	requireStatus(t, rec, http.StatusOK)
	user := decodeEnvelope(t, rec)["user"].(map[string]any)
	assert.Equal(t, u.Email, user["email"])

	c, rec = newJSONContext(t, http.MethodPost, "/auth/refresh", "", u)
	require.NoError(t, h.Refresh(c))
	requireStatus(t, rec, http.StatusOK)
	assert.NotEmpty(t, decodeEnvelope(t, rec)["token"])
}
