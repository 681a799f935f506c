package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"decode", NewDecodeError("bad", nil), ErrorTypeDecode, http.StatusUnprocessableEntity},
		{"layout", NewUnsupportedLayoutError("bad", nil), ErrorTypeUnsupportedLayout, http.StatusUnprocessableEntity},
		{"render", NewRenderError("bad", nil), ErrorTypeRender, http.StatusInternalServerError},
		{"timeout", NewTimeoutError("bad", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"not found", NewNotFoundError("bad", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("bad", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.typ {
				t.Errorf("Expected type %s, got %s", tt.typ, tt.err.Type)
			}
			if GetStatusCode(tt.err) != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, GetStatusCode(tt.err))
			}
		})
	}
}

func TestWrappedAppErrorIsFound(t *testing.T) {
	base := NewDecodeError("could not decode", fmt.Errorf("eof"))
	wrapped := fmt.Errorf("process: %w", base)

	if !IsType(wrapped, ErrorTypeDecode) {
		t.Error("Expected wrapped error to be recognised as decode error")
	}
	if GetStatusCode(wrapped) != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", GetStatusCode(wrapped))
	}
	if UserMessage(wrapped) != "could not decode" {
		t.Errorf("Unexpected user message: %q", UserMessage(wrapped))
	}
}

func TestPlainErrorDefaults(t *testing.T) {
	err := fmt.Errorf("boom")
	if GetStatusCode(err) != http.StatusInternalServerError {
		t.Errorf("Expected 500 for plain error, got %d", GetStatusCode(err))
	}
	if IsType(err, ErrorTypeInternal) {
		t.Error("Plain error should not match any AppError type")
	}
	if UserMessage(err) == "" {
		t.Error("Expected generic user message")
	}
}

func TestErrorString(t *testing.T) {
	err := NewRenderError("chart failed", fmt.Errorf("zero range"))
	want := "render: chart failed (caused by: zero range)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if err.Unwrap() == nil {
		t.Error("Expected cause to be unwrapped")
	}

	detailed := err.WithDetails("histogram")
	if detailed.Details != "histogram" || err.Details != "" {
		t.Error("WithDetails must not mutate the receiver")
	}
}
