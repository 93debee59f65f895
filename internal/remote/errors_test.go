package remote

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      ErrorKind
		retryable bool
	}{
		{"network", NetworkError("select task", errors.New("connection refused")), KindNetwork, true},
		{"auth", AuthError("upsert task", errors.New("token expired")), KindAuth, false},
		{"validation", ValidationError("upsert task", errors.New("missing id")), KindValidation, false},
		{"unknown", UnknownError("delete task", errors.New("boom")), KindUnknown, false},
		{"untagged", errors.New("plain"), KindUnknown, false},
		{"nil", nil, KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("sync push failed: %w", NetworkError("upsert task", errors.New("timeout")))
	if !IsNetwork(err) {
		t.Error("wrapped network error lost its classification")
	}
	if !IsRetryable(err) {
		t.Error("wrapped network error must stay retryable")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NetworkError("select task", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap does not expose the cause")
	}
}
