package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/casedesk/casedesk/internal/model"
)

// UserRepo wraps the `users` collection.
type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

// Create inserts a new user and populates its ID.  The email is
// normalized to lowercase; a duplicate email surfaces as ErrEmailExists
// via the unique index.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByGoogleIDOrEmail looks a user up by Google subject id or email.
// Used by the federated login path, where either match identifies the
// account to sign in.
func (r *UserRepo) GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	filter := bson.M{"$or": bson.A{
		bson.M{"googleId": googleID},
		bson.M{"email": email},
	}}
	var u model.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// LinkGoogle attaches a Google subject id (and avatar, when provided) to
// an existing account.  Called when a federated login matches a local
// account by email.
func (r *UserRepo) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, avatar string) error {
	set := bson.M{"googleId": googleID, "updatedAt": time.Now().UTC()}
	if avatar != "" {
		set["avatar"] = avatar
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
