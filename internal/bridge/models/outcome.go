package models

import "strings"

// VerificationStatus is the decision attached to a verification session.
type VerificationStatus string

const (
	StatusApproved VerificationStatus = "Approved"
	StatusPending  VerificationStatus = "Pending"
	StatusDeclined VerificationStatus = "Declined"
)

// ParseVerificationStatus accepts the status names case-insensitively.
func ParseVerificationStatus(raw string) (VerificationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return StatusApproved, true
	case "pending":
		return StatusPending, true
	case "declined":
		return StatusDeclined, true
	}
	return "", false
}

// SessionData identifies the verification session an outcome belongs to.
type SessionData struct {
	SessionID string
	Status    VerificationStatus
}

// ErrorKind is the closed set of verification failures the engine reports.
type ErrorKind string

const (
	ErrorSessionExpired     ErrorKind = "SessionExpired"
	ErrorNetwork            ErrorKind = "NetworkError"
	ErrorCameraAccessDenied ErrorKind = "CameraAccessDenied"
	ErrorNotInitialized     ErrorKind = "NotInitialized"
	ErrorAPI                ErrorKind = "ApiError"
	ErrorUnknown            ErrorKind = "Unknown"
)

// ParseErrorKind maps a kind name to an ErrorKind; unrecognized names are Unknown.
func ParseErrorKind(raw string) ErrorKind {
	switch ErrorKind(raw) {
	case ErrorSessionExpired, ErrorNetwork, ErrorCameraAccessDenied, ErrorNotInitialized, ErrorAPI:
		return ErrorKind(raw)
	}
	return ErrorUnknown
}

// VerificationError is a failure reported by the engine or the presentation.
type VerificationError struct {
	Kind    ErrorKind
	Message string
}

func (e *VerificationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// OutcomeType discriminates VerificationOutcome.
type OutcomeType string

const (
	OutcomeCompleted OutcomeType = "completed"
	OutcomeCancelled OutcomeType = "cancelled"
	OutcomeFailed    OutcomeType = "failed"
)

// VerificationOutcome is the terminal value yielded by the presentation surface.
// Session is required for Completed; Error is required for Failed.
type VerificationOutcome struct {
	Type    OutcomeType
	Session *SessionData
	Error   *VerificationError
}

func Completed(session SessionData) VerificationOutcome {
	return VerificationOutcome{Type: OutcomeCompleted, Session: &session}
}

func Cancelled(session *SessionData) VerificationOutcome {
	return VerificationOutcome{Type: OutcomeCancelled, Session: session}
}

func Failed(err VerificationError, session *SessionData) VerificationOutcome {
	return VerificationOutcome{Type: OutcomeFailed, Error: &err, Session: session}
}
