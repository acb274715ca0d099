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

// SpeechRepo wraps the `speeches` collection.  Mirrors NoteRepo; the
// parent-case ownership check lives in the handlers.
type SpeechRepo struct {
	col *mongo.Collection
}

func NewSpeechRepo(db *mongo.Database) *SpeechRepo {
	return &SpeechRepo{col: db.Collection("speeches")}
}

// Create inserts a speech and populates its ID.
func (r *SpeechRepo) Create(ctx context.Context, s *model.Speech) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

// GetByID fetches a speech by id.
func (r *SpeechRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Speech, error) {
	var s model.Speech
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByCase returns all speeches of a case, most recently updated first.
func (r *SpeechRepo) ListByCase(ctx context.Context, caseID primitive.ObjectID) ([]*model.Speech, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"case_id": caseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Speech{}
	for cur.Next(ctx) {
		s := new(model.Speech)
		if err := cur.Decode(s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the stored speech.
func (r *SpeechRepo) Update(ctx context.Context, s *model.Speech) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a speech by id.
func (r *SpeechRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
