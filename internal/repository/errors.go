// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound covers both a missing record and a record owned
// by someone else, so handlers can answer 404 without leaking whether
// the record exists. ErrEmailExists and ErrCaseNumberExists surface the
// store's unique indexes as Conflict responses.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist or is not owned
// by the requesting user. The two situations are deliberately
// indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user whose email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrCaseNumberExists is returned when a case number collides with an
// existing case. Handlers should translate this into a 400 conflict
// response.
var ErrCaseNumberExists = errors.New("case number already exists")
