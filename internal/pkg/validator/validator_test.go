package validator

import "testing"

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("   ") {
		t.Error("whitespace-only string should be empty")
	}
	if IsEmpty("x") {
		t.Error("non-empty string reported empty")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@sub.domain.in"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}

	invalid := []string{"user", "user@", "@example.com", "user@example"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "91 98765 43210", "98765-43210"}
	for _, p := range valid {
		if !IsValidPhoneNumber(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}

	invalid := []string{"12345", "abcdefghij", "+4498765432101"}
	for _, p := range invalid {
		if IsValidPhoneNumber(p) {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}

func TestIsValidUserCode(t *testing.T) {
	if !IsValidUserCode("WKR-0042") {
		t.Error("expected WKR-0042 to be valid")
	}
	if !IsValidUserCode("SUP-123") {
		t.Error("expected SUP-123 to be valid")
	}
	if IsValidUserCode("wkr-0042") {
		t.Error("lowercase prefix should be invalid")
	}
	if IsValidUserCode("W-42") {
		t.Error("too-short prefix should be invalid")
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2026-02-29"); ok {
		t.Error("2026-02-29 is not a real date")
	}
	if _, ok := IsValidDate("2024-02-29"); !ok {
		t.Error("2024-02-29 is a valid leap day")
	}
}

func TestIsValidDateTime(t *testing.T) {
	if _, ok := IsValidDateTime("2026-01-15T10:30:00+05:30"); !ok {
		t.Error("offset timestamp should be valid")
	}
	if _, ok := IsValidDateTime("2026-01-15 10:30:00"); ok {
		t.Error("space-separated timestamp should be invalid")
	}
}

func TestValidationErrorsError(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "a is required"},
		{Field: "b", Message: "b is bad"},
	}
	want := "a: a is required; b: b is bad"
	if errs.Error() != want {
		t.Errorf("got %q, want %q", errs.Error(), want)
	}

	m := errs.ToMap()
	if m["a"] != "a is required" || m["b"] != "b is bad" {
		t.Errorf("unexpected map: %v", m)
	}
}
