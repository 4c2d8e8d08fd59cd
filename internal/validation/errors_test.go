package validation

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "validation failed"},
		{"Single error", []FieldError{{Field: "name", Message: "name is required"}}, "name is required"},
		{"Multiple errors", []FieldError{
			{Field: "title", Message: "title is required"},
			{Field: "folder_id", Message: "folder_id must be a positive integer"},
		}, "title is required; folder_id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			if result := ve.Error(); result != tt.expected {
				t.Errorf("ValidationError.Error() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestValidationError_OrNil(t *testing.T) {
	ve := NewValidationError()
	if ve.OrNil() != nil {
		t.Error("OrNil() on an empty ValidationError should be nil")
	}

	ve.AddRequiredError("name")
	if ve.OrNil() == nil {
		t.Error("OrNil() with errors should return the ValidationError")
	}
}

func TestValidationError_Merge(t *testing.T) {
	other := NewValidationError()
	other.AddRequiredError("title")
	other.AddInvalidCharacterError("title", "a\nb")

	ve := NewValidationError()
	ve.AddRequiredError("name")
	ve.Merge(other)
	ve.Merge(nil)
	ve.Merge(errors.New("not a validation error"))

	if len(ve.Errors) != 3 {
		t.Fatalf("expected 3 errors after merge, got %d", len(ve.Errors))
	}
	if got := len(ve.GetFieldErrors("title")); got != 2 {
		t.Errorf("expected 2 title errors, got %d", got)
	}
}

func TestValidationError_Messages(t *testing.T) {
	tests := []struct {
		name     string
		add      func(ve *ValidationError)
		errType  ValidationErrorType
		expected string
	}{
		{"required", func(ve *ValidationError) { ve.AddRequiredError("name") }, ErrorTypeRequired, "name is required"},
		{"format", func(ve *ValidationError) { ve.AddInvalidFormatError("date", "x", "YYYY-MM-DD") }, ErrorTypeInvalidFormat, "date must be formatted as YYYY-MM-DD"},
		{"length", func(ve *ValidationError) { ve.AddInvalidLengthError("name", "x", 1, 100) }, ErrorTypeInvalidLength, "name must be between 1 and 100 characters long"},
		{"max length", func(ve *ValidationError) { ve.AddInvalidLengthError("description", "x", 0, 2000) }, ErrorTypeInvalidLength, "description must be at most 2000 characters long"},
		{"value", func(ve *ValidationError) { ve.AddInvalidValueError("task_id", 0, "must be a positive integer") }, ErrorTypeInvalidValue, "task_id must be a positive integer"},
		{"character", func(ve *ValidationError) { ve.AddInvalidCharacterError("title", "a\tb") }, ErrorTypeInvalidCharacter, "title contains control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.add(ve)
			if ve.Errors[0].Type != tt.errType {
				t.Errorf("type = %v, expected %v", ve.Errors[0].Type, tt.errType)
			}
			if ve.Error() != tt.expected {
				t.Errorf("message = %q, expected %q", ve.Error(), tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(NewValidationError()) {
		t.Error("IsValidationError should accept *ValidationError")
	}
	if IsValidationError(errors.New("plain")) {
		t.Error("IsValidationError should reject other errors")
	}
}
