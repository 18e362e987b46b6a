package validator

import "testing"

type bookingInput struct {
	Email string `json:"email" validate:"required,email"`
	Date  string `json:"date" validate:"required,isodate"`
	Time  string `json:"time" validate:"required,clock"`
}

func TestValidate_CustomTags(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(bookingInput{Email: "a@b.co", Date: "2025-03-10", Time: "02:15 PM"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	err := v.Validate(bookingInput{Email: "nope", Date: "10/03/2025", Time: "25:00"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := v.FormatValidationErrors(err)
	for _, f := range []string{"email", "date", "time"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("missing error for %q in %v", f, fields)
		}
	}
}
