package protocol

import (
	"fmt"
	"time"
)

// Code is a numeric error code sent to clients.
type Code int

// Error codes. 1004 is unassigned.
const (
	CodeFetchFailed           Code = 1000
	CodeAuthenticationFailed  Code = 1001
	CodeInvalidJSON           Code = 1002
	CodeInvalidVariantField   Code = 1003
	CodeInvalidQuery          Code = 1005
	CodeInvalidRequestID      Code = 1006
	CodeInvalidMaxResults     Code = 1007
	CodeSearchFailed          Code = 1008
	CodeUnexpectedServerError Code = 1009
)

// Severity is a static triage tier attached to each code.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// String returns the kind name of the code (e.g., "INVALID_JSON").
func (c Code) String() string {
	switch c {
	case CodeFetchFailed:
		return "FETCH_FAILED"
	case CodeAuthenticationFailed:
		return "AUTHENTICATION_FAILED"
	case CodeInvalidJSON:
		return "INVALID_JSON"
	case CodeInvalidVariantField:
		return "INVALID_VARIANT_FIELD"
	case CodeInvalidQuery:
		return "INVALID_QUERY"
	case CodeInvalidRequestID:
		return "INVALID_REQUEST_ID"
	case CodeInvalidMaxResults:
		return "INVALID_MAX_RESULTS"
	case CodeSearchFailed:
		return "SEARCH_FAILED"
	case CodeUnexpectedServerError:
		return "UNEXPECTED_SERVER_ERROR"
	default:
		return fmt.Sprintf("UNKNOWN_%d", int(c))
	}
}

// Severity returns the triage tier of the code.
func (c Code) Severity() Severity {
	switch c {
	case CodeInvalidMaxResults, CodeInvalidQuery:
		return SeverityLow
	case CodeInvalidJSON, CodeInvalidVariantField, CodeInvalidRequestID:
		return SeverityMedium
	case CodeSearchFailed, CodeFetchFailed:
		return SeverityHigh
	case CodeAuthenticationFailed, CodeUnexpectedServerError:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// Action names the operation that raised the code.
func (c Code) Action() string {
	switch c {
	case CodeFetchFailed:
		return "fetch"
	case CodeAuthenticationFailed:
		return "authentication"
	case CodeInvalidQuery, CodeInvalidRequestID, CodeInvalidMaxResults, CodeSearchFailed:
		return "search"
	case CodeInvalidJSON, CodeInvalidVariantField:
		return "request"
	default:
		return "server"
	}
}

// DefaultMessage returns the human-readable message for the code.
func (c Code) DefaultMessage() string {
	switch c {
	case CodeFetchFailed:
		return "Failed to fetch market data from upstream"
	case CodeAuthenticationFailed:
		return "Authentication failed"
	case CodeInvalidJSON:
		return "Invalid JSON format"
	case CodeInvalidVariantField:
		return "Invalid type field in request"
	case CodeInvalidQuery:
		return "Invalid query"
	case CodeInvalidRequestID:
		return "Invalid request ID"
	case CodeInvalidMaxResults:
		return "Invalid max results value"
	case CodeSearchFailed:
		return "Search operation failed"
	case CodeUnexpectedServerError:
		return "Unexpected server error"
	default:
		return "Unknown error occurred"
	}
}

// Error is a coded client-facing error.
type Error struct {
	Code            Code
	Message         string
	RequestID       string
	OriginalMessage *string // Raw payload echoed back when it could not be parsed
}

// NewError creates an error with the default message for code.
func NewError(code Code, requestID string) *Error {
	return &Error{
		Code:      code,
		Message:   code.DefaultMessage(),
		RequestID: requestID,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, int(e.Code), e.Message)
}

// WithOriginal attaches the raw inbound payload.
func (e *Error) WithOriginal(raw []byte) *Error {
	s := string(raw)
	e.OriginalMessage = &s
	return e
}

// ErrorPayload is the data of an "error" event.
type ErrorPayload struct {
	Code            Code      `json:"code"`
	Kind            string    `json:"kind"`
	Message         string    `json:"message"`
	Severity        Severity  `json:"severity"`
	Action          string    `json:"action"`
	RequestID       string    `json:"requestID,omitempty"`
	OriginalMessage *string   `json:"originalMessage,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Payload renders the error for the wire.
func (e *Error) Payload(now time.Time) ErrorPayload {
	return ErrorPayload{
		Code:            e.Code,
		Kind:            e.Code.String(),
		Message:         e.Message,
		Severity:        e.Code.Severity(),
		Action:          e.Code.Action(),
		RequestID:       e.RequestID,
		OriginalMessage: e.OriginalMessage,
		Timestamp:       now.UTC(),
	}
}

// Event wraps the error in an "error" event envelope.
func (e *Error) Event(now time.Time) Event {
	return Event{Kind: EventError, Data: e.Payload(now)}
}
