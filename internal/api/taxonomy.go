package api

import (
	"errors"
	"strings"

	"github.com/taskhive/taskhive-api/internal/service/identity"
)

// Stable error codes exposed to clients. These are part of the external
// contract: clients branch on them, so they never change meaning.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUpstreamAuth    = "UPSTREAM_AUTH_ERROR"
	CodeDatastore       = "DATASTORE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
	CodeMethod          = "METHOD_NOT_ALLOWED"
)

// Classification is the result of mapping a failure description onto the
// client-facing error contract.
type Classification struct {
	Status  int
	Code    string
	Message string
}

// taxonomyEntry is one row of the ordered classification table. When
// PreserveMessage is false the row's Message replaces the raw failure text in
// the response (the raw text still goes to the logs).
type taxonomyEntry struct {
	Substring       string
	Status          int
	Code            string
	PreserveMessage bool
	Message         string
}

// taxonomy maps failure descriptions to HTTP status and error code. Rows are
// evaluated top to bottom and the first substring match wins, so specific
// patterns must stay above generic ones: "user with this email already
// exists" has to precede the bare "already exists", and every policy denial
// phrase precedes "not found" so a denial mentioning a resource is never
// misread as a 404. The ordering is covered by a test.
var taxonomy = []taxonomyEntry{
	// Policy denials. Messages are the exact client-facing denial reasons.
	{Substring: "Only administrators can", Status: 403, Code: CodeForbidden, PreserveMessage: true},
	{Substring: "You don't have permission", Status: 403, Code: CodeForbidden, PreserveMessage: true},
	{Substring: "last administrator", Status: 403, Code: CodeForbidden, PreserveMessage: true},

	// Authentication.
	{Substring: "Authentication required", Status: 401, Code: CodeUnauthenticated, PreserveMessage: true},
	{Substring: "invalid or expired token", Status: 401, Code: CodeUnauthenticated, PreserveMessage: false, Message: "Invalid or expired token"},
	{Substring: "identity provider error", Status: 400, Code: CodeUpstreamAuth, PreserveMessage: false, Message: "Identity verification failed"},

	// Business failures raised by the services.
	{Substring: "with this email already exists", Status: 409, Code: CodeConflict, PreserveMessage: false, Message: "A user with this email already exists"},
	{Substring: "validation failed", Status: 400, Code: CodeValidation, PreserveMessage: true},
	{Substring: "not found", Status: 404, Code: CodeNotFound, PreserveMessage: false, Message: "Resource not found"},
	{Substring: "already exists", Status: 409, Code: CodeConflict, PreserveMessage: false, Message: "Resource already exists"},

	// Infrastructure.
	{Substring: "database error", Status: 500, Code: CodeDatastore, PreserveMessage: false, Message: "A database error occurred"},
	{Substring: "transaction failed", Status: 500, Code: CodeDatastore, PreserveMessage: false, Message: "A database error occurred"},
}

// Classify maps a failure description onto the taxonomy. Unmatched
// descriptions classify as 500/INTERNAL_ERROR with a generic message so raw
// internals never leak to clients.
func Classify(description string) Classification {
	for _, entry := range taxonomy {
		if strings.Contains(description, entry.Substring) {
			message := entry.Message
			if entry.PreserveMessage {
				message = description
			}
			return Classification{Status: entry.Status, Code: entry.Code, Message: message}
		}
	}

	return Classification{Status: 500, Code: CodeInternal, Message: "An unexpected error occurred"}
}

// ClassifyError classifies an error raised below the pipeline boundary. The
// substring table is consulted first; an otherwise-unmatched error that wraps
// the unauthenticated sentinel still classifies as 401 so the outcome does
// not depend on the sentinel's wording.
func ClassifyError(err error) Classification {
	c := Classify(err.Error())
	if c.Code == CodeInternal && errors.Is(err, identity.ErrUnauthenticated) {
		return Classification{Status: 401, Code: CodeUnauthenticated, Message: "Authentication required"}
	}
	return c
}
