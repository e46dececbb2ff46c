package qbasher

import "testing"

func TestStreetNumberValidSingle(t *testing.T) {
	if !StreetNumberValid("42", "10,42,99") {
		t.Fatal("expected 42 to match single-value spec")
	}
	if StreetNumberValid("43", "10,42,99") {
		t.Fatal("expected 43 not to match")
	}
}

func TestStreetNumberValidRange(t *testing.T) {
	if !StreetNumberValid("15", "10-20") {
		t.Fatal("expected 15 to fall within 10-20")
	}
	if StreetNumberValid("25", "10-20") {
		t.Fatal("expected 25 to fall outside 10-20")
	}
}

func TestStreetNumberValidStep(t *testing.T) {
	if !StreetNumberValid("14", "10:2") {
		t.Fatal("expected 14 to match every-2nd-from-10 spec")
	}
	if StreetNumberValid("15", "10:2") {
		t.Fatal("expected 15 to miss every-2nd-from-10 spec")
	}
}

func TestLeadingStreetNumber(t *testing.T) {
	num, rest, ok := LeadingStreetNumber("123 main st")
	if !ok || num != "123" || rest != "main st" {
		t.Fatalf("got %q %q %v", num, rest, ok)
	}
	if _, _, ok := LeadingStreetNumber("main st"); ok {
		t.Fatal("expected no leading number")
	}
}
