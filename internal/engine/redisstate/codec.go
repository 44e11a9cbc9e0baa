package redisstate

import (
	"encoding/json"
	"errors"
	"fmt"

	"verifybridge/internal/bridge/models"
)

type wireState struct {
	AttemptID string              `json:"attempt_id,omitempty"`
	Status    models.EngineStatus `json:"status"`
	ErrorKind models.ErrorKind    `json:"error_kind,omitempty"`
	Message   string              `json:"message,omitempty"`
}

func encodeState(state models.EngineState) ([]byte, error) {
	w := wireState{AttemptID: state.AttemptID, Status: state.Status}
	if state.Cause != nil {
		var verr *models.VerificationError
		if errors.As(state.Cause, &verr) {
			w.ErrorKind = verr.Kind
			w.Message = verr.Message
		} else {
			w.Message = state.Cause.Error()
		}
	}
	return json.Marshal(w)
}

func decodeState(payload string) (models.EngineState, error) {
	var w wireState
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return models.EngineState{}, fmt.Errorf("decode engine state: %w", err)
	}
	switch w.Status {
	case models.EngineIdle, models.EngineStarting, models.EngineReady:
		return models.EngineState{Status: w.Status, AttemptID: w.AttemptID}, nil
	case models.EngineError:
		var cause error
		switch {
		case w.ErrorKind != "":
			cause = &models.VerificationError{Kind: models.ParseErrorKind(string(w.ErrorKind)), Message: w.Message}
		case w.Message != "":
			cause = errors.New(w.Message)
		}
		return models.Errored(cause).ForAttempt(w.AttemptID), nil
	}
	return models.EngineState{}, fmt.Errorf("decode engine state: unknown status %q", w.Status)
}
