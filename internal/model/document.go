package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is the metadata record for an uploaded file.  The bytes live on
// disk under FilePath; FileURL is the stable public path derived from the
// generated storage name.  Deleting a document removes both the record and
// the stored bytes.
type Document struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID     primitive.ObjectID `bson:"case_id" json:"case_id"`
	FileName   string             `bson:"file_name" json:"file_name"`
	FilePath   string             `bson:"file_path" json:"file_path"`
	FileURL    string             `bson:"file_url" json:"file_url"`
	FileSize   int64              `bson:"file_size" json:"file_size"`
	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
