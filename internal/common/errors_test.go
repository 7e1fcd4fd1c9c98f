package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("stage load: %w", NewAppError(KindUnsupportedFormat, "bad image", errors.New("png: invalid format")))
	if got := KindOf(wrapped); got != KindUnsupportedFormat {
		t.Errorf("KindOf = %s, want %s", got, KindUnsupportedFormat)
	}
	if !errors.Is(wrapped, ErrUnsupportedFormat) {
		t.Error("errors.Is should match the kind sentinel")
	}
	if errors.Is(wrapped, ErrMissingDependency) {
		t.Error("errors.Is matched the wrong kind")
	}
	if got := KindOf(errors.New("boom")); got != KindGenericFailure {
		t.Errorf("plain errors should be generic, got %s", got)
	}
	if KindOf(nil) != "" {
		t.Error("nil error should have no kind")
	}
}

func TestMissingValueError(t *testing.T) {
	err := MissingValueError("RDW (%)")
	if err.Field != "RDW (%)" {
		t.Errorf("unexpected field %q", err.Field)
	}
	if !strings.Contains(MessageOf(err), "'RDW (%)'") {
		t.Errorf("message should name the feature: %s", MessageOf(err))
	}
	if !errors.Is(err, ErrCriticalMissingValue) {
		t.Error("expected critical missing value kind")
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{NewAppError(KindInputNotFound, "File not found.", nil), codes.NotFound},
		{NewAppError(KindUnsupportedFormat, "bad", nil), codes.InvalidArgument},
		{NewAppError(KindMissingDependency, "install poppler", nil), codes.Unavailable},
		{MissingValueError("MCV (fL)"), codes.FailedPrecondition},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		st, _ := status.FromError(StatusFromError(tt.err))
		if st.Code() != tt.want {
			t.Errorf("StatusFromError(%v) = %s, want %s", tt.err, st.Code(), tt.want)
		}
	}
}
