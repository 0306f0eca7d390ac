package models

import "errors"

// ErrorKind classifies a domain failure. Kinds are stable strings exposed
// to clients in the error body.
type ErrorKind string

const (
	KindValidation        ErrorKind = "ValidationError"
	KindUnauthorized      ErrorKind = "Unauthorized"
	KindForbidden         ErrorKind = "Forbidden"
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindSelfVote          ErrorKind = "SelfVote"
	KindDuplicateVote     ErrorKind = "DuplicateVote"
	KindConflict          ErrorKind = "Conflict"
	KindPaymentFailed     ErrorKind = "PaymentVerificationFailed"
	KindExternalService   ErrorKind = "ExternalServiceError"
)

// Error is the structured failure every mutating operation returns on the
// deny path: a machine-readable kind plus a short human-readable message.
// Internal detail (wrapped causes, correlation ids) stays in logs.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Retryable reports whether the caller may retry with backoff. Only
// optimistic-concurrency conflicts and unreachable collaborators qualify;
// everything else is terminal.
func (e *Error) Retryable() bool {
	return e.Kind == KindConflict || e.Kind == KindExternalService
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func ValidationErr(message string) *Error   { return NewError(KindValidation, message) }
func UnauthorizedErr(message string) *Error { return NewError(KindUnauthorized, message) }
func ForbiddenErr(message string) *Error    { return NewError(KindForbidden, message) }
func NotFoundErr(message string) *Error     { return NewError(KindNotFound, message) }
func InvalidTransitionErr(message string) *Error {
	return NewError(KindInvalidTransition, message)
}
func SelfVoteErr() *Error {
	return NewError(KindSelfVote, "you cannot vote on your own issue")
}
func DuplicateVoteErr() *Error {
	return NewError(KindDuplicateVote, "you have already voted on this issue")
}
func ConflictErr(message string) *Error { return NewError(KindConflict, message) }
func PaymentFailedErr(message string) *Error {
	return NewError(KindPaymentFailed, message)
}
func ExternalServiceErr(message string) *Error {
	return NewError(KindExternalService, message)
}

// KindOf extracts the kind from any error, defaulting to an internal
// ExternalServiceError-shaped unknown for non-domain errors.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
