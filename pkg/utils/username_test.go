package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"mina", "Mina_123", "abc", "a2345678901234567890"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"ab",                     // too short
		"a23456789012345678901",  // too long
		"has space",              // space
		"émile",                  // non-ASCII
		"_leading",               // starts with underscore
		"dash-name",              // dash
		"",                       // empty
	}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  MiNa_123 "); got != "mina_123" {
		t.Errorf("NormalizeUsername = %q", got)
	}
}
