package auth

import "testing"

func TestHashAndCheck(t *testing.T) {
	digest, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "correct horse" {
		t.Fatal("digest must not equal the password")
	}
	if !CheckPassword("correct horse", digest) {
		t.Fatal("valid password should check out")
	}
	if CheckPassword("wrong horse", digest) {
		t.Fatal("wrong password should fail")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("six characters should pass: %v", err)
	}
}
