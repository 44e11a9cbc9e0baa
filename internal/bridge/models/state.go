package models

import "fmt"

// EngineStatus is the engine's observable lifecycle position.
type EngineStatus string

const (
	EngineIdle     EngineStatus = "idle"
	EngineStarting EngineStatus = "starting"
	EngineReady    EngineStatus = "ready"
	EngineError    EngineStatus = "error"
)

// EngineState is one emission of the engine state stream. Cause is only set
// for EngineError. AttemptID names the attempt whose start produced the
// state; an empty AttemptID is addressed to every subscriber.
type EngineState struct {
	Status    EngineStatus
	Cause     error
	AttemptID string
}

func Idle() EngineState     { return EngineState{Status: EngineIdle} }
func Starting() EngineState { return EngineState{Status: EngineStarting} }
func Ready() EngineState    { return EngineState{Status: EngineReady} }

func Errored(cause error) EngineState {
	return EngineState{Status: EngineError, Cause: cause}
}

// IsTerminal reports whether the state ends observation for a session.
func (s EngineState) IsTerminal() bool {
	return s.Status == EngineReady || s.Status == EngineError
}

// ForAttempt returns a copy of s addressed to attemptID.
func (s EngineState) ForAttempt(attemptID string) EngineState {
	s.AttemptID = attemptID
	return s
}

// BelongsTo reports whether s is addressed to attemptID.
func (s EngineState) BelongsTo(attemptID string) bool {
	return s.AttemptID == "" || s.AttemptID == attemptID
}

func (s EngineState) String() string {
	if s.Status == EngineError && s.Cause != nil {
		return fmt.Sprintf("%s(%v)", s.Status, s.Cause)
	}
	return string(s.Status)
}

// PendingSession is the session an engine has opened and is ready to present.
type PendingSession struct {
	SessionID  string
	URL        string
	Language   *Language
	FontFamily *string
}
