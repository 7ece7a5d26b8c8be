package validator

import (
	"errors"
	"testing"
)

type answerForm struct {
	QuestionID       uint `json:"question_id" validate:"required"`
	SelectedOptionID uint `json:"selected_option_id" validate:"required"`
}

func TestValidate(t *testing.T) {
	v := New()

	if err := v.Validate(answerForm{QuestionID: 1, SelectedOptionID: 2}); err != nil {
		t.Errorf("valid struct must pass, got %v", err)
	}

	err := v.Validate(answerForm{})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(errs))
	}
	if errs[0].Field != "QuestionID" || errs[0].Rule != "required" {
		t.Errorf("unexpected first error: %+v", errs[0])
	}
	if errs[0].Message != "is required" {
		t.Errorf("unexpected message: %q", errs[0].Message)
	}
}

func TestValidationErrorsError(t *testing.T) {
	single := ValidationErrors{{Field: "QuestionID", Message: "is required"}}
	if single.Error() != "validation failed: QuestionID is required" {
		t.Errorf("unexpected message: %q", single.Error())
	}

	multi := ValidationErrors{{Field: "A"}, {Field: "B"}}
	if multi.Error() != "validation failed: 2 field errors" {
		t.Errorf("unexpected message: %q", multi.Error())
	}
}
