package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // context carries the request deadline into the user lookup
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
)

// UserLoader resolves a token subject to a live user record.  The user
// repository satisfies it; tests substitute a stub.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// Auth returns an Echo middleware that validates a Bearer access token,
// resolves the token's subject against the user store and injects the
// resulting user into the request context.  The provided secret must
// match the one used when issuing tokens.  Handlers access the
// authenticated user via `c.Get("user")` and its hex id via
// `c.Get("user_id")`.  The resolved identity is the sole authorization
// anchor downstream; no handler trusts a client-supplied owner field.
//
// The request is rejected with 401 when the token is missing, malformed,
// expired, signed with an unexpected method, or when its subject no
// longer resolves to a user.
func Auth(secret string, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthenticated(c, "Not authorized, no token provided")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse the token, pinning the signing method to HMAC so a
			// token signed with a different algorithm is rejected.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return unauthenticated(c, "Not authorized, token invalid or expired")
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return unauthenticated(c, "Not authorized, token invalid or expired")
			}
			sub, _ := claims["sub"].(string)
			uid, err := primitive.ObjectIDFromHex(sub)
			if err != nil {
				return unauthenticated(c, "Not authorized, token invalid or expired")
			}

			// The subject must still resolve to a user: a deleted account
			// invalidates all of its outstanding tokens.
			u, err := users.GetByID(c.Request().Context(), uid)
			if err != nil {
				return unauthenticated(c, "Not authorized, user no longer exists")
			}

			c.Set("user", u)
			c.Set("user_id", u.ID.Hex())
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
}
