package utils

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleClaims carries the identity fields extracted from a verified
// Google ID token.
type GoogleClaims struct {
	Sub     string // Google's stable subject identifier
	Email   string
	Name    string
	Picture string
}

// ErrGoogleDisabled is returned when no OAuth client id is configured.
var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// GoogleVerifier validates Google ID tokens against a fixed audience
// (the application's OAuth client id).  Signature, expiry and audience
// checks are delegated to the idtoken package.
type GoogleVerifier struct {
	Audience string
}

// Verify checks the credential and returns the embedded identity.
func (v GoogleVerifier) Verify(ctx context.Context, credential string) (GoogleClaims, error) {
	if v.Audience == "" {
		return GoogleClaims{}, ErrGoogleDisabled
	}
	payload, err := idtoken.Validate(ctx, credential, v.Audience)
	if err != nil {
		return GoogleClaims{}, fmt.Errorf("verify google credential: %w", err)
	}
	gc := GoogleClaims{Sub: payload.Subject}
	if s, ok := payload.Claims["email"].(string); ok {
		gc.Email = s
	}
	if s, ok := payload.Claims["name"].(string); ok {
		gc.Name = s
	}
	if s, ok := payload.Claims["picture"].(string); ok {
		gc.Picture = s
	}
	if gc.Email == "" {
		return GoogleClaims{}, errors.New("google credential has no email claim")
	}
	return gc, nil
}
