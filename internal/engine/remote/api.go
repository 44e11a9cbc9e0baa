package remote

import (
	"verifybridge/internal/bridge/models"
)

// createSessionRequest is the body sent to open a workflow session.
type createSessionRequest struct {
	WorkflowID      string                  `json:"workflow_id"`
	VendorData      *string                 `json:"vendor_data,omitempty"`
	Metadata        *string                 `json:"metadata,omitempty"`
	Language        string                  `json:"language,omitempty"`
	ContactDetails  *models.ContactDetails  `json:"contact_details,omitempty"`
	ExpectedDetails *models.ExpectedDetails `json:"expected_details,omitempty"`
}

// resumeSessionRequest exchanges a session token issued by the integrator's
// backend for the session it belongs to.
type resumeSessionRequest struct {
	SessionToken string `json:"session_token"`
	Language     string `json:"language,omitempty"`
}

type sessionResponse struct {
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
	URL          string `json:"url"`
	Status       string `json:"status"`
}

type apiErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func (r apiErrorResponse) text() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Message
}

func languageCode(cfg *models.Configuration) string {
	if cfg == nil || cfg.Language == nil {
		return ""
	}
	return cfg.Language.Code()
}
