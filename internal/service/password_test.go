package service

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if strings.Contains(hash, "pw1") {
		t.Fatalf("hash contains plaintext")
	}
	if !h.Verify("pw1", hash) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("pw2", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestPasswordHasherSaltsEachCall(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("expected distinct digests for the same password")
	}
}

func TestPasswordHasherCost(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost + 1)
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.MinCost+1 {
		t.Fatalf("cost = %d, %v", cost, err)
	}

	if NewPasswordHasher(100).cost != bcrypt.DefaultCost {
		t.Fatalf("out of range cost should fall back to default")
	}
}

func TestPasswordHasherMalformedDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("pw", "not-a-bcrypt-hash") {
		t.Fatalf("malformed digest must not verify")
	}
}
