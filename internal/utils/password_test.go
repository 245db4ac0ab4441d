package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Fatalf("expected matching password to verify")
	}
	if VerifyPassword(hash, "battery staple") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPasswordClampsBadCost(t *testing.T) {
	// A cost of 0 is below bcrypt's minimum; hashing must still succeed
	// with the default cost instead of erroring out.
	hash, err := HashPassword("s3cret", 0)
	if err != nil {
		t.Fatalf("hash with zero cost: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("read cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatalf("expected clamped hash to verify")
	}
}
