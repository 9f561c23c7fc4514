package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	hash, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash equals the plaintext")
	}

	if err := h.Verify("correct horse battery", hash); err != nil {
		t.Errorf("Verify(correct): %v", err)
	}
	if err := h.Verify("wrong password", hash); err == nil {
		t.Error("Verify(wrong) = nil, want error")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))
	a, _ := h.Hash("correct horse battery")
	b, _ := h.Hash("correct horse battery")
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashLengthLimits(t *testing.T) {
	h := NewBcryptHasher(WithCost(4))

	if _, err := h.Hash("short"); err == nil {
		t.Error("Hash(short) = nil error, want error")
	}
	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash(73 chars) = nil error, want error")
	}
	if _, err := h.Hash(strings.Repeat("x", 72)); err != nil {
		t.Errorf("Hash(72 chars): %v", err)
	}
}

func TestVerifyGarbageHash(t *testing.T) {
	h := NewBcryptHasher()
	if err := h.Verify("whatever", "not-a-bcrypt-hash"); err == nil {
		t.Error("Verify against garbage hash = nil, want error")
	}
}
