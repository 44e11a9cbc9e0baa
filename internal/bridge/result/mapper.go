// Package result normalizes engine outcomes and failures into BridgeResult.
package result

import (
	"errors"

	"verifybridge/internal/bridge/models"
)

const (
	DefaultErrorMessage      = "An unknown error occurred."
	DefaultStartErrorMessage = "An unexpected error occurred."
	NoHostSurfaceMessage     = "no host surface available"
	MissingSessionMessage    = "verification completed without session data"

	ErrorTypeUnknown = "unknown"
)

var errorTypes = map[models.ErrorKind]string{
	models.ErrorSessionExpired:     "sessionExpired",
	models.ErrorNetwork:            "networkError",
	models.ErrorCameraAccessDenied: "cameraAccessDenied",
	models.ErrorNotInitialized:     "notInitialized",
	models.ErrorAPI:                "apiError",
	models.ErrorUnknown:            ErrorTypeUnknown,
}

// ErrorType returns the wire name for an error kind.
func ErrorType(kind models.ErrorKind) string {
	if t, ok := errorTypes[kind]; ok {
		return t
	}
	return ErrorTypeUnknown
}

// FromOutcome maps a terminal verification outcome. A completed outcome
// without session data cannot be reported as completed and maps to the
// generic failure.
func FromOutcome(outcome models.VerificationOutcome) models.BridgeResult {
	var r models.BridgeResult
	switch outcome.Type {
	case models.OutcomeCompleted:
		if outcome.Session == nil {
			return Failed(ErrorTypeUnknown, MissingSessionMessage)
		}
		r.Type = models.ResultCompleted
	case models.OutcomeCancelled:
		r.Type = models.ResultCancelled
	default:
		verr := outcome.Error
		if verr == nil {
			verr = &models.VerificationError{Kind: models.ErrorUnknown}
		}
		r = FromVerificationError(verr)
	}
	if outcome.Session != nil {
		r.SessionID = outcome.Session.SessionID
		r.Status = string(outcome.Session.Status)
	}
	return r
}

// FromVerificationError maps an engine-reported error without session data.
func FromVerificationError(verr *models.VerificationError) models.BridgeResult {
	return Failed(ErrorType(verr.Kind), verr.Message)
}

// FromEngineError maps the cause carried by an Error state. Causes that are not
// verification errors map to the generic failure.
func FromEngineError(cause error) models.BridgeResult {
	var verr *models.VerificationError
	if errors.As(cause, &verr) {
		return FromVerificationError(verr)
	}
	if cause == nil {
		return Failed(ErrorTypeUnknown, "")
	}
	return Failed(ErrorTypeUnknown, cause.Error())
}

// FromStartFailure maps a failure raised by the engine's start entry point.
func FromStartFailure(err error) models.BridgeResult {
	msg := DefaultStartErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Failed(ErrorTypeUnknown, msg)
}

// NoHostSurface is delivered when the engine is ready but nothing can present UI.
func NoHostSurface() models.BridgeResult {
	return Failed(ErrorTypeUnknown, NoHostSurfaceMessage)
}

// Failed builds a failed result; an empty message becomes DefaultErrorMessage.
func Failed(errorType, message string) models.BridgeResult {
	if message == "" {
		message = DefaultErrorMessage
	}
	return models.BridgeResult{
		Type:         models.ResultFailed,
		ErrorType:    errorType,
		ErrorMessage: message,
	}
}
