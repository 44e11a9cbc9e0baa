package models

// ResultType is the discriminant of a BridgeResult.
type ResultType string

const (
	ResultCompleted ResultType = "completed"
	ResultCancelled ResultType = "cancelled"
	ResultFailed    ResultType = "failed"
)

// BridgeResult is the only shape returned across the boundary.
type BridgeResult struct {
	Type         ResultType `json:"type"`
	SessionID    string     `json:"sessionId,omitempty"`
	Status       string     `json:"status,omitempty"`
	ErrorType    string     `json:"errorType,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// HasSession reports whether session fields are populated.
func (r BridgeResult) HasSession() bool {
	return r.SessionID != ""
}
