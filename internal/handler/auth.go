package handler

import (
	"context" // provides context with cancellation for DB calls
	"errors"  // sentinel comparisons against repository errors
	"net/http"
	"regexp"  // email shape validation
	"strings" // string manipulation utilities
	"time"    // timeouts for DB calls

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/config"
	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/repository"
	"github.com/casedesk/casedesk/internal/utils"
)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*model.User, error)
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, avatar string) error
}

// GoogleVerifier validates a Google credential and returns the identity
// embedded in it.  utils.GoogleVerifier is the production implementation.
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (utils.GoogleClaims, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Google GoogleVerifier
}

func NewAuthHandler(cfg config.Config, users UserStore, google GoogleVerifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Google: google}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type googleReq struct {
	Credential string `json:"credential"`
}

// authResp is the envelope returned by every endpoint that issues a
// token.  The user part never carries the password hash.
type authResp struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

var emailRx = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Signup: create a local identity and return a token immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	// First violated field wins, in declaration order.
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "Name is required")
	}
	if !emailRx.MatchString(req.Email) {
		return fail(c, http.StatusBadRequest, "Please provide a valid email")
	}
	if len(req.Password) < 8 {
		return fail(c, http.StatusBadRequest, "Password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("signup: hash password: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating user")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AuthProvider: model.ProviderLocal,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusBadRequest, "User already exists with this email")
		}
		c.Logger().Errorf("signup: create user: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating user")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("signup: issue token: %v", err)
		return fail(c, http.StatusInternalServerError, "Error creating user")
	}

	return c.JSON(http.StatusCreated, authResp{
		Success: true,
		Message: "User registered successfully",
		Token:   token.Token,
		User:    u.Public(),
	})
}

// Login: verify local credentials and return a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRx.MatchString(req.Email) {
		return fail(c, http.StatusBadRequest, "Please provide a valid email")
	}
	if req.Password == "" {
		return fail(c, http.StatusBadRequest, "Password is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		}
		c.Logger().Errorf("login: load user: %v", err)
		return fail(c, http.StatusInternalServerError, "Error logging in")
	}
	// Accounts created through Google have no password hash; point the
	// user at the federated flow instead of failing the comparison.
	if u.AuthProvider == model.ProviderGoogle && u.PasswordHash == "" {
		return fail(c, http.StatusBadRequest, "This account was created with Google. Please sign in with Google.")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("login: issue token: %v", err)
		return fail(c, http.StatusInternalServerError, "Error logging in")
	}

	return c.JSON(http.StatusOK, authResp{
		Success: true,
		Message: "Login successful",
		Token:   token.Token,
		User:    u.Public(),
	})
}

// GoogleAuth: verify a Google credential and upsert the matching
// identity.  A federated login never fails on absence of an account;
// absence is the creation path.
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req googleReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Credential) == "" {
		return fail(c, http.StatusBadRequest, "Google credential is required")
	}

	claims, err := h.Google.Verify(c.Request().Context(), req.Credential)
	if err != nil {
		c.Logger().Errorf("google auth: verify credential: %v", err)
		return fail(c, http.StatusUnauthorized, "Invalid Google credential")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByGoogleIDOrEmail(ctx, claims.Sub, claims.Email)
	switch {
	case err == nil:
		// Link the Google id to a pre-existing local account that shares
		// the email.
		if u.GoogleID == "" {
			if err := h.Users.LinkGoogle(ctx, u.ID, claims.Sub, claims.Picture); err != nil {
				c.Logger().Errorf("google auth: link account: %v", err)
				return fail(c, http.StatusInternalServerError, "Error authenticating with Google")
			}
			u.GoogleID = claims.Sub
			if claims.Picture != "" {
				u.Avatar = claims.Picture
			}
		}
	case errors.Is(err, repository.ErrNotFound):
		u = &model.User{
			Name:         claims.Name,
			Email:        claims.Email,
			GoogleID:     claims.Sub,
			Avatar:       claims.Picture,
			AuthProvider: model.ProviderGoogle,
		}
		if err := h.Users.Create(ctx, u); err != nil {
			c.Logger().Errorf("google auth: create user: %v", err)
			return fail(c, http.StatusInternalServerError, "Error authenticating with Google")
		}
	default:
		c.Logger().Errorf("google auth: load user: %v", err)
		return fail(c, http.StatusInternalServerError, "Error authenticating with Google")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("google auth: issue token: %v", err)
		return fail(c, http.StatusInternalServerError, "Error authenticating with Google")
	}

	return c.JSON(http.StatusOK, authResp{
		Success: true,
		Message: "Google authentication successful",
		Token:   token.Token,
		User:    u.Public(),
	})
}

// Me returns the resolved identity's public profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Public()})
}

// Refresh re-mints a token from an already-authenticated context.  The
// credentials are not re-checked: passing the auth middleware is the
// proof of identity here.
func (h *AuthHandler) Refresh(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("refresh: issue token: %v", err)
		return fail(c, http.StatusInternalServerError, "Error refreshing token")
	}
	return c.JSON(http.StatusOK, authResp{
		Success: true,
		Token:   token.Token,
		User:    u.Public(),
	})
}
