package ws

import (
	"verifybridge/internal/bridge/models"
)

// Frame types exchanged with an attached host.
const (
	framePresent = "present"
	frameOutcome = "outcome"
)

// presentFrame asks the host to render the verification flow for a session.
type presentFrame struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	SessionID  string `json:"session_id"`
	URL        string `json:"url"`
	Language   string `json:"language,omitempty"`
	FontFamily string `json:"font_family,omitempty"`
}

type inboundFrame struct {
	Type      string        `json:"type"`
	RequestID string        `json:"request_id"`
	Outcome   *outcomeFrame `json:"outcome,omitempty"`
}

type outcomeFrame struct {
	Type    string        `json:"type"`
	Session *sessionFrame `json:"session,omitempty"`
	Error   *errorFrame   `json:"error,omitempty"`
}

type sessionFrame struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type errorFrame struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// toOutcome converts a host outcome frame. Unrecognized outcome types and
// statuses are treated as unknown failures so the caller is still answered.
func (f *outcomeFrame) toOutcome() models.VerificationOutcome {
	if f == nil {
		return models.Failed(models.VerificationError{Kind: models.ErrorUnknown, Message: "host sent an empty outcome"}, nil)
	}

	var session *models.SessionData
	if f.Session != nil && f.Session.SessionID != "" {
		status, ok := models.ParseVerificationStatus(f.Session.Status)
		if !ok {
			status = models.StatusPending
		}
		session = &models.SessionData{SessionID: f.Session.SessionID, Status: status}
	}

	switch models.OutcomeType(f.Type) {
	case models.OutcomeCompleted:
		if session != nil {
			return models.Completed(*session)
		}
		return models.Failed(models.VerificationError{Kind: models.ErrorUnknown, Message: "completed outcome without session"}, nil)
	case models.OutcomeCancelled:
		return models.Cancelled(session)
	case models.OutcomeFailed:
		verr := models.VerificationError{Kind: models.ErrorUnknown}
		if f.Error != nil {
			verr.Kind = models.ParseErrorKind(f.Error.Kind)
			verr.Message = f.Error.Message
		}
		return models.Failed(verr, session)
	}
	return models.Failed(models.VerificationError{Kind: models.ErrorUnknown, Message: "unrecognized outcome " + f.Type}, session)
}
