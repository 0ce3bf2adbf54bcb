package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap with message",
			err:      ErrFileNotFound,
			msg:      "opening input file",
			expected: "opening input file: file not found",
		},
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "should return nil",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil && result != nil {
				t.Errorf("expected nil, got %v", result)
			}
			if tt.err != nil && result.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result.Error())
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrUnknownEncoding, "looking up %q", "utf-99")
	expected := `looking up "utf-99": unknown encoding`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIs(t *testing.T) {
	wrapped := Wrap(ErrStreamClosed, "writing chunk")

	if !Is(wrapped, ErrStreamClosed) {
		t.Error("expected Is to return true for wrapped error")
	}

	if Is(wrapped, ErrFileNotFound) {
		t.Error("expected Is to return false for different error")
	}
}

func TestUnwrap(t *testing.T) {
	wrapped := Wrap(ErrInvalidConfig, "validating options")
	if !errors.Is(Unwrap(wrapped), ErrInvalidConfig) {
		t.Error("expected Unwrap to return the sentinel error")
	}
}
