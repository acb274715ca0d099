package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Speech is a drafted court speech attached to a Case.  Structurally a
// twin of Note; kept as its own collection and type because the two are
// separate resources on the API surface.
type Speech struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID    primitive.ObjectID `bson:"case_id" json:"case_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
