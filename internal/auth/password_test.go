package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hashed == "pw1" {
		t.Fatal("hash must differ from the plaintext")
	}
	if !h.Compare(hashed, "pw1") {
		t.Error("Compare should accept the original password")
	}
	if h.Compare(hashed, "pw2") {
		t.Error("Compare should reject a different password")
	}
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestBcryptHasher_MalformedHash_ReturnsFalse(t *testing.T) {
	if NewBcryptHasher(bcrypt.MinCost).Compare("not-a-bcrypt-hash", "pw") {
		t.Error("malformed hash should not verify")
	}
}

func TestNewBcryptHasher_OutOfRangeCost_UsesDefault(t *testing.T) {
	for _, cost := range []int{0, bcrypt.MaxCost + 1} {
		if h := NewBcryptHasher(cost); h.cost != bcrypt.DefaultCost {
			t.Errorf("NewBcryptHasher(%d).cost = %d, want %d", cost, h.cost, bcrypt.DefaultCost)
		}
	}
}
