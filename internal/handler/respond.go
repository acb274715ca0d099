package handler // handler defines http handlers

import (
	"context" // context provides the detached context used for event publishing
	"errors"  // errors provides the sentinel used by currentUser
	"time"    // time stamps published events

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/casedesk/casedesk/internal/model"
	"github.com/casedesk/casedesk/internal/queue"
	queue_publisher "github.com/casedesk/casedesk/internal/service"
)

// respond writes the standard success envelope.  Message and data are
// omitted from the JSON when empty so simple acknowledgements stay small.
func respond(c echo.Context, status int, message string, data any) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

// fail writes the standard error envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// currentUser extracts the authenticated user placed in context by the
// auth middleware.
func currentUser(c echo.Context) (*model.User, error) {
	u, ok := c.Get("user").(*model.User)
	if !ok || u == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return u, nil
}

// parseID converts a path parameter into an ObjectID.  A malformed id is
// reported the same way as a missing record, so callers answer 404.
func parseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	return id, err == nil
}

// publishActivity emits a case activity event in the background.  Broker
// failures are logged by the publisher and never affect the request.
func publishActivity(action, caseID, caseNumber, userID, detail string) {
	ev := queue.CaseActivityEvent{
		Action:     action,
		CaseID:     caseID,
		CaseNumber: caseNumber,
		UserID:     userID,
		Detail:     detail,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		_ = queue_publisher.PublishCaseActivity(context.Background(), ev)
	}()
}
