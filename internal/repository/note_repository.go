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

// NoteRepo wraps the `notes` collection.  Ownership is not checked
// here: notes are owned through their parent case, which handlers load
// (owner-filtered) before touching a note.
type NoteRepo struct {
	col *mongo.Collection
}

func NewNoteRepo(db *mongo.Database) *NoteRepo {
	return &NoteRepo{col: db.Collection("notes")}
}

// Create inserts a note and populates its ID.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

// GetByID fetches a note by id.
func (r *NoteRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Note, error) {
	var n model.Note
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// ListByCase returns all notes of a case, most recently updated first.
func (r *NoteRepo) ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Note{}
	for cur.Next(ctx) {
		n := new(model.Note)
		if err := cur.Decode(n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the stored note.
func (r *NoteRepo) Update(ctx context.Context, n *model.Note) error {
	n.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": n.ID}, n)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a note by id.  Deleting an already deleted note
// returns ErrNotFound.
func (r *NoteRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
