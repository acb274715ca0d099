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

// DocumentRepo wraps the `documents` metadata collection.  The stored
// bytes themselves live in the storage package; handlers keep the two
// in sync.
type DocumentRepo struct {
	col *mongo.Collection
}

func NewDocumentRepo(db *mongo.Database) *DocumentRepo {
	return &DocumentRepo{col: db.Collection("documents")}
}

// Create inserts a document metadata record and populates its ID.
func (r *DocumentRepo) Create(ctx context.Context, d *model.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, d)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return nil
}

// GetByID fetches a document record by id.
func (r *DocumentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error) {
	var d model.Document
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByCase returns all documents of a case, newest first.
func (r *DocumentRepo) ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Document{}
	for cur.Next(ctx) {
		d := new(model.Document)
		if err := cur.Decode(d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document record by id.
func (r *DocumentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
