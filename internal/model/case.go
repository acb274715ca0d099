package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Case statuses.  StatusPending is the default for new cases.
const (
	StatusPending = "Pending"
	StatusActive  = "Active"
	StatusClosed  = "Closed"
	StatusOnHold  = "On Hold"
)

// ValidStatus reports whether s is one of the enumerated case statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusClosed, StatusOnHold:
		return true
	}
	return false
}

// Case is an owned record in the `cases` collection.  LawyerID references
// the owning user; every read and write is filtered by it.  CaseNumber is
// unique across all lawyers (enforced by index).
type Case struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LawyerID    primitive.ObjectID `bson:"lawyer_id" json:"lawyer_id"`
	CaseNumber  string             `bson:"case_number" json:"case_number"`
	CaseTitle   string             `bson:"case_title" json:"case_title"`
	ClientName  string             `bson:"client_name" json:"client_name"`
	CourtName   string             `bson:"court_name" json:"court_name"`
	CaseType    string             `bson:"case_type" json:"case_type"`
	FilingDate  time.Time          `bson:"filing_date" json:"filing_date"`
	Status      string             `bson:"status" json:"status"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
