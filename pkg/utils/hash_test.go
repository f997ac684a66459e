package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword("s3cret-pass", hashed) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong-pass", hashed) {
		t.Error("wrong password accepted")
	}
}
