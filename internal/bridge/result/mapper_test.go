package result

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"verifybridge/internal/bridge/models"
)

func TestFromOutcome(t *testing.T) {
	approved := models.SessionData{SessionID: "s1", Status: models.StatusApproved}
	declined := &models.SessionData{SessionID: "s2", Status: models.StatusDeclined}

	tests := []struct {
		name    string
		outcome models.VerificationOutcome
		want    models.BridgeResult
	}{
		{
			name:    "completed carries session",
			outcome: models.Completed(approved),
			want:    models.BridgeResult{Type: "completed", SessionID: "s1", Status: "Approved"},
		},
		{
			name:    "completed without session is unknown failure",
			outcome: models.VerificationOutcome{Type: models.OutcomeCompleted},
			want:    models.BridgeResult{Type: "failed", ErrorType: "unknown", ErrorMessage: MissingSessionMessage},
		},
		{
			name:    "cancelled without session",
			outcome: models.Cancelled(nil),
			want:    models.BridgeResult{Type: "cancelled"},
		},
		{
			name:    "cancelled with session",
			outcome: models.Cancelled(declined),
			want:    models.BridgeResult{Type: "cancelled", SessionID: "s2", Status: "Declined"},
		},
		{
			name: "failed with message and session",
			outcome: models.Failed(models.VerificationError{
				Kind:    models.ErrorCameraAccessDenied,
				Message: "camera permission denied",
			}, declined),
			want: models.BridgeResult{
				Type:         "failed",
				ErrorType:    "cameraAccessDenied",
				ErrorMessage: "camera permission denied",
				SessionID:    "s2",
				Status:       "Declined",
			},
		},
		{
			name:    "failed without message uses default",
			outcome: models.Failed(models.VerificationError{Kind: models.ErrorSessionExpired}, nil),
			want: models.BridgeResult{
				Type:         "failed",
				ErrorType:    "sessionExpired",
				ErrorMessage: DefaultErrorMessage,
			},
		},
		{
			name:    "failed without error is unknown",
			outcome: models.VerificationOutcome{Type: models.OutcomeFailed},
			want:    models.BridgeResult{Type: "failed", ErrorType: "unknown", ErrorMessage: DefaultErrorMessage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromOutcome(tt.outcome))
		})
	}
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "sessionExpired", ErrorType(models.ErrorSessionExpired))
	assert.Equal(t, "networkError", ErrorType(models.ErrorNetwork))
	assert.Equal(t, "cameraAccessDenied", ErrorType(models.ErrorCameraAccessDenied))
	assert.Equal(t, "notInitialized", ErrorType(models.ErrorNotInitialized))
	assert.Equal(t, "apiError", ErrorType(models.ErrorAPI))
	assert.Equal(t, "unknown", ErrorType(models.ErrorUnknown))
	assert.Equal(t, "unknown", ErrorType("Bogus"))
}

func TestFromEngineError(t *testing.T) {
	t.Run("structured cause keeps its kind", func(t *testing.T) {
		cause := fmt.Errorf("session: %w", &models.VerificationError{Kind: models.ErrorNetwork, Message: "offline"})
		r := FromEngineError(cause)
		assert.Equal(t, "networkError", r.ErrorType)
		assert.Equal(t, "offline", r.ErrorMessage)
	})

	t.Run("opaque cause is generic", func(t *testing.T) {
		r := FromEngineError(errors.New("boom"))
		assert.Equal(t, models.BridgeResult{Type: "failed", ErrorType: "unknown", ErrorMessage: "boom"}, r)
	})

	t.Run("missing cause uses default message", func(t *testing.T) {
		r := FromEngineError(nil)
		assert.Equal(t, DefaultErrorMessage, r.ErrorMessage)
	})
}

func TestFromStartFailure(t *testing.T) {
	r := FromStartFailure(errors.New("engine not initialized"))
	assert.Equal(t, models.BridgeResult{Type: "failed", ErrorType: "unknown", ErrorMessage: "engine not initialized"}, r)

	assert.Equal(t, DefaultStartErrorMessage, FromStartFailure(nil).ErrorMessage)
}

func TestNoHostSurface(t *testing.T) {
	r := NoHostSurface()
	assert.Equal(t, models.ResultFailed, r.Type)
	assert.Equal(t, "unknown", r.ErrorType)
	assert.Equal(t, "no host surface available", r.ErrorMessage)
}
