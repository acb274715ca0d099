package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a free-text record attached to a Case.  Ownership is indirect:
// whoever owns the parent Case may read and mutate the note, regardless
// of who authored it (CreatedBy is informational).
type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID    primitive.ObjectID `bson:"case_id" json:"case_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
