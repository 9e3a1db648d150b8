package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		if err.Error() != "[NOT_FOUND] resource not found" {
			t.Errorf("expected [NOT_FOUND] resource not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("AddContextOnDomainError", func(t *testing.T) {
		err := AddContext(New(CodeParseFailed, "syntax error"), CtxPath, "app/models/user.rb")
		if !IsCode(err, CodeParseFailed) {
			t.Fatalf("expected PARSE_FAILED to survive AddContext, got %v", err)
		}
		expected := "[PARSE_FAILED] syntax error map[path:app/models/user.rb]"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextOnForeignError", func(t *testing.T) {
		err := AddContext(errors.New("disk full"), CtxOperation, "write")
		if CodeOf(err) != CodeInternal {
			t.Errorf("expected foreign error to become INTERNAL_ERROR, got %q", CodeOf(err))
		}
	})

	t.Run("CodeOfForeign", func(t *testing.T) {
		if code := CodeOf(errors.New("plain")); code != "" {
			t.Errorf("expected empty code, got %q", code)
		}
	})
}
