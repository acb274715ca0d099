package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth provider tags stored in users.authProvider.  A "local" user signs
// in with an email/password pair; a "google" user was created through a
// verified Google credential and may have no password hash at all.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents an identity record in the `users` collection.
//
// Fields:
//  ID           - MongoDB object id (_id).
//  Name         - display name.
//  Email        - unique email address, stored lowercase.
//  PasswordHash - bcrypt hash of the password.  Empty for accounts
//                 created through Google; such accounts cannot log in
//                 with a password until one is set.
//  GoogleID     - Google subject identifier.  Unique when present
//                 (sparse index); empty for purely local accounts.
//  Avatar       - URL of the profile picture, may be empty.
//  AuthProvider - "local" or "google".
//
// The password hash and Google id never leave the server: the json tags
// exclude them and API responses use Public().
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	GoogleID     string             `bson:"googleId,omitempty" json:"-"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	AuthProvider string             `bson:"authProvider" json:"authProvider"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the profile shape returned by the API.  It never carries
// credential material.
type PublicUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public projects the user into its API representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID.Hex(),
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
}
