// Package queue defines message payloads exchanged over the message broker.
package queue

// Activity actions published to the case.activity queue.
const (
	ActionCaseCreated     = "case.created"
	ActionCaseUpdated     = "case.updated"
	ActionCaseDeleted     = "case.deleted"
	ActionDocumentAdded   = "document.uploaded"
	ActionDocumentRemoved = "document.deleted"
)

// CaseActivityEvent is published whenever a case or one of its documents
// is mutated.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type CaseActivityEvent struct {
	Action     string `json:"action"`
	CaseID     string `json:"case_id"`
	CaseNumber string `json:"case_number"`
	UserID     string `json:"user_id"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
