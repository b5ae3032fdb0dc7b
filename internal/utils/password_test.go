package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	// Cost 4 (bcrypt minimum) keeps the test fast; the embedded cost makes
	// this equivalent to hashing at any other factor.
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plain password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password did not verify")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	h1, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-password", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ by salt")
	}
}

func TestHashPasswordRejectsTooLowCostSilently(t *testing.T) {
	// A cost below bcrypt.MinCost falls back to the default instead of
	// producing a weak hash.
	hash, err := HashPassword("pw", 0)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "pw") {
		t.Error("fallback-cost hash did not verify")
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("garbage hash must never verify")
	}
}
