package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.domain.io"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("expected %q to be valid: %v", email, err)
		}
	}
	invalid := []string{"", "plain", "two@@example.com", "no domain@example.com", "alice@nodot"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("expected %q to be rejected", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("alice_99"); err != nil {
		t.Fatalf("expected valid username: %v", err)
	}
	invalid := []string{"ab", "has space", "too-dashy", "x123456789012345678901234567890x"}
	for _, username := range invalid {
		if err := ValidateUsername(username); err == nil {
			t.Fatalf("expected %q to be rejected", username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("expected valid password: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestValidateReferralCode(t *testing.T) {
	valid := []string{"ABC123", "FRIEND23", "A1B2C3D4E5F6"}
	for _, code := range valid {
		if err := ValidateReferralCode(code); err != nil {
			t.Fatalf("expected %q to be valid: %v", code, err)
		}
	}
	invalid := []string{"", "abc123", "SHORT", "WAYTOOLONGCODE", "BAD-CODE"}
	for _, code := range invalid {
		if err := ValidateReferralCode(code); err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}
