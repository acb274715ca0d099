// This file defines repository methods for the `cases` collection.  All
// lookups that act on behalf of a user are filtered by lawyer_id inside
// the query itself, so a record owned by someone else is simply never
// matched and surfaces as ErrNotFound.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/casedesk/casedesk/internal/model"
)

// CaseRepo wraps the `cases` collection.
type CaseRepo struct {
	col *mongo.Collection
}

func NewCaseRepo(db *mongo.Database) *CaseRepo {
	return &CaseRepo{col: db.Collection("cases")}
}

// Create inserts a new case and populates its ID.  A duplicate case
// number surfaces as ErrCaseNumberExists via the unique index.
func (r *CaseRepo) Create(ctx context.Context, cs *model.Case) error {
	now := time.Now().UTC()
	cs.CreatedAt = now
	cs.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, cs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCaseNumberExists
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cs.ID = oid
	}
	return nil
}

// GetByIDAndOwner fetches a case by id, but only if it belongs to the
// given lawyer.  A case owned by someone else yields ErrNotFound.
func (r *CaseRepo) GetByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) (*model.Case, error) {
	var cs model.Case
	err := r.col.FindOne(ctx, bson.M{"_id": id, "lawyer_id": ownerID}).Decode(&cs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cs, nil
}

// ListByOwner returns all cases for a lawyer, newest first.
func (r *CaseRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*model.Case, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"lawyer_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Case{}
	for cur.Next(ctx) {
		cs := new(model.Case)
		if err := cur.Decode(cs); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the stored case, filtered by id and owner so the
// owner reference can never change hands.  Returns ErrNotFound when no
// document matches and ErrCaseNumberExists on a case number collision.
func (r *CaseRepo) Update(ctx context.Context, cs *model.Case) error {
	cs.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": cs.ID, "lawyer_id": cs.LawyerID}, cs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCaseNumberExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a case if it belongs to the lawyer.
// Dependent notes, speeches and documents are not touched; orphans are
// unreachable because their parent ownership check fails afterwards.
func (r *CaseRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "lawyer_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
